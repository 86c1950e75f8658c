package hub

import (
	"context"
	"math"
	"time"

	"github.com/soar/joyinput/internal/joystick"
)

const (
	fullSyncInterval = 5 * time.Second
	analogThreshold  = 0.01
)

// StatusSource provides full snapshots for the periodic sync.
type StatusSource interface {
	Status() joystick.Status
}

// Broadcaster forwards joystick events to the hub. Combined channel updates
// that moved less than analogThreshold on every channel are suppressed.
type Broadcaster struct {
	hub     *Hub
	src     StatusSource
	last    joystick.ChannelsChanged
	hasLast bool
}

func NewBroadcaster(h *Hub, src StatusSource) *Broadcaster {
	return &Broadcaster{hub: h, src: src}
}

// Run consumes events until ctx is cancelled or the channel is closed.
func (b *Broadcaster) Run(ctx context.Context, events <-chan joystick.Event) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if msg := b.translate(ev); msg != nil {
				b.hub.Broadcast(msg)
			}
		case <-ticker.C:
			msg := newMessage(TypeStatus, b.hub.nextSeq())
			msg.Status = NewStatus(b.src.Status())
			b.hub.Broadcast(msg)
		}
	}
}

func (b *Broadcaster) translate(ev joystick.Event) *Message {
	var msg *Message

	switch ev := ev.(type) {
	case joystick.ChannelsChanged:
		if b.hasLast && !channelsChanged(b.last, ev) {
			return nil
		}
		b.last, b.hasLast = ev, true
		msg = newMessage(TypeChannels, b.hub.nextSeq())
		msg.Channels = NewChannels(ev)
	case joystick.AxisChanged:
		msg = newMessage(TypeAxis, b.hub.nextSeq())
		msg.Axis = &Axis{Axis: ev.Axis, Raw: ev.Raw, Value: ev.Value}
	case joystick.ButtonPressed:
		msg = newMessage(TypeButton, b.hub.nextSeq())
		msg.Button = &Button{Button: ev.Button, Pressed: true}
	case joystick.ButtonReleased:
		msg = newMessage(TypeButton, b.hub.nextSeq())
		msg.Button = &Button{Button: ev.Button}
	case joystick.HatChanged:
		hat := ev.Hat
		msg = newMessage(TypeHat, b.hub.nextSeq())
		msg.Hat = &hat
	}
	return msg
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < analogThreshold
}

func channelsChanged(old, cur joystick.ChannelsChanged) bool {
	return !floatEqual(old.Roll, cur.Roll) ||
		!floatEqual(old.Pitch, cur.Pitch) ||
		!floatEqual(old.Yaw, cur.Yaw) ||
		!floatEqual(old.Throttle, cur.Throttle) ||
		old.Hat != cur.Hat ||
		old.Buttons != cur.Buttons
}

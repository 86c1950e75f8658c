package hub

import (
	"math"
	"time"

	"github.com/soar/joyinput/internal/joystick"
)

// Message types sent from server to client.
const (
	TypeStatus   = "status"
	TypeChannels = "channels"
	TypeAxis     = "axis"
	TypeButton   = "button"
	TypeHat      = "hat"
	TypeAck      = "ack"
	TypeError    = "error"
)

// Message is a WebSocket message sent from server to client.
type Message struct {
	Type        string                           `json:"type"`
	Seq         int64                            `json:"seq"`
	Timestamp   int64                            `json:"timestamp"` // Unix milliseconds
	Status      *Status                          `json:"status,omitempty"`
	Channels    *Channels                        `json:"channels,omitempty"`
	Axis        *Axis                            `json:"axis,omitempty"`
	Button      *Button                          `json:"button,omitempty"`
	Hat         *joystick.Hat                    `json:"hat,omitempty"`
	Command     string                           `json:"command,omitempty"`
	Error       string                           `json:"error,omitempty"`
	Calibration map[int]joystick.AxisCalibration `json:"calibration,omitempty"`
}

// Channels is the wire form of joystick.ChannelsChanged. Unavailable
// channels are null.
type Channels struct {
	Roll     *float64     `json:"roll"`
	Pitch    *float64     `json:"pitch"`
	Yaw      *float64     `json:"yaw"`
	Throttle *float64     `json:"throttle"`
	Hat      joystick.Hat `json:"hat"`
	Buttons  uint16       `json:"buttons"`
}

type Axis struct {
	Axis  int     `json:"axis"`
	Raw   int16   `json:"raw"`
	Value float64 `json:"value"`
}

type Button struct {
	Button  int  `json:"button"`
	Pressed bool `json:"pressed"`
}

type AxisStatus struct {
	Axis        int                      `json:"axis"`
	Present     bool                     `json:"present"`
	Raw         int16                    `json:"raw"`
	Value       *float64                 `json:"value"`
	Channel     joystick.Channel         `json:"channel"`
	Calibration joystick.AxisCalibration `json:"calibration"`
}

type Status struct {
	Device      joystick.DeviceInfo `json:"device"`
	Channels    Channels            `json:"channels"`
	Axes        []AxisStatus        `json:"axes"`
	Calibrating bool                `json:"calibrating"`
}

// ClientMessage is a command sent from the client to the server.
type ClientMessage struct {
	Type     string `json:"type"`
	Axis     int    `json:"axis"`
	Channel  string `json:"channel,omitempty"`
	Value    bool   `json:"value,omitempty"`
	Joystick int    `json:"joystick"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func NewChannels(c joystick.ChannelsChanged) *Channels {
	return &Channels{
		Roll:     nullable(c.Roll),
		Pitch:    nullable(c.Pitch),
		Yaw:      nullable(c.Yaw),
		Throttle: nullable(c.Throttle),
		Hat:      c.Hat,
		Buttons:  c.Buttons,
	}
}

func NewStatus(s joystick.Status) *Status {
	st := &Status{
		Device:      s.Device,
		Channels:    *NewChannels(s.Channels),
		Axes:        make([]AxisStatus, len(s.Axes)),
		Calibrating: s.Calibrating,
	}
	for i, a := range s.Axes {
		st.Axes[i] = AxisStatus{
			Axis:        a.Axis,
			Present:     a.Present,
			Raw:         a.Raw,
			Value:       nullable(a.Value),
			Channel:     a.Channel,
			Calibration: a.Calibration,
		}
	}
	return st
}

func newMessage(typ string, seq int64) *Message {
	return &Message{
		Type:      typ,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
	}
}

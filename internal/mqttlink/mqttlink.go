// Package mqttlink forwards joystick control output to a vehicle over MQTT.
package mqttlink

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/soar/joyinput/internal/joystick"
)

const publishTimeout = 250 * time.Millisecond

type Options struct {
	Broker   string
	ClientID string
	Topic    string
	// CanReverse reports whether the vehicle accepts negative throttle.
	CanReverse bool
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Link publishes combined channel updates to <topic>/channels and button
// presses to <topic>/buttons. It implements joystick.Vehicle.
type Link struct {
	client     publisher
	disconnect func()
	topic      string
	canReverse bool

	mu      sync.Mutex
	failing bool
}

var (
	_ joystick.Vehicle  = (*Link)(nil)
	_ joystick.Reverser = (*Link)(nil)
)

// Dial connects to the broker.
func Dial(opts Options) (*Link, error) {
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: %s not reachable yet, retrying in background", opts.Broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.Broker, err)
	} else {
		log.Printf("mqtt: connected to %s, publishing to %s/#", opts.Broker, opts.Topic)
	}

	l := newLink(client, opts.Topic, opts.CanReverse)
	l.disconnect = func() { client.Disconnect(250) }
	return l, nil
}

func newLink(client publisher, topic string, canReverse bool) *Link {
	return &Link{
		client:     client,
		topic:      topic,
		canReverse: canReverse,
	}
}

func (l *Link) Close() {
	if l.disconnect != nil {
		l.disconnect()
	}
}

func (l *Link) SystemCanReverse() bool {
	return l.canReverse
}

func (l *Link) SetManualControlCommands(c joystick.ChannelsChanged) {
	l.publish(l.topic+"/channels", newChannelsPayload(c))
}

func (l *Link) ReceiveButton(button int) {
	l.publish(l.topic+"/buttons", buttonPayload{
		Button:    button,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (l *Link) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("mqtt: marshal %s: %v", topic, err)
		return
	}

	token := l.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		err = fmt.Errorf("timed out")
	} else {
		err = token.Error()
	}

	// only log transitions; the forwarder publishes every cycle
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil && !l.failing {
		log.Printf("mqtt: publish %s: %v", topic, err)
	} else if err == nil && l.failing {
		log.Printf("mqtt: publishing to %s again", topic)
	}
	l.failing = err != nil
}

type channelsPayload struct {
	Roll      *float64     `json:"roll"`
	Pitch     *float64     `json:"pitch"`
	Yaw       *float64     `json:"yaw"`
	Throttle  *float64     `json:"throttle"`
	Hat       joystick.Hat `json:"hat"`
	Buttons   uint16       `json:"buttons"`
	Timestamp int64        `json:"timestamp"`
}

type buttonPayload struct {
	Button    int   `json:"button"`
	Timestamp int64 `json:"timestamp"`
}

func newChannelsPayload(c joystick.ChannelsChanged) channelsPayload {
	return channelsPayload{
		Roll:      nullable(c.Roll),
		Pitch:     nullable(c.Pitch),
		Yaw:       nullable(c.Yaw),
		Throttle:  nullable(c.Throttle),
		Hat:       c.Hat,
		Buttons:   c.Buttons,
		Timestamp: time.Now().UnixMilli(),
	}
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

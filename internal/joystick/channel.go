package joystick

import (
	"fmt"
	"strings"
)

// Channel is a logical control channel a physical axis can drive.
type Channel uint8

const (
	ChannelNone Channel = iota
	ChannelYaw
	ChannelPitch
	ChannelRoll
	ChannelThrottle

	numChannels
)

var channelNames = [numChannels]string{
	ChannelNone:     "none",
	ChannelYaw:      "yaw",
	ChannelPitch:    "pitch",
	ChannelRoll:     "roll",
	ChannelThrottle: "throttle",
}

// Valid reports whether c is one of the defined channels.
func (c Channel) Valid() bool {
	return c < numChannels
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
	return channelNames[c]
}

// ParseChannel converts a channel name ("roll", "THROTTLE", ...) to a Channel.
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range channelNames {
		if name == s {
			return Channel(c), nil
		}
	}
	return ChannelNone, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
}

func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

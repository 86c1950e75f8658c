package joystick

// Event is a notification published by the driver. The concrete types are
// ChannelsChanged, AxisChanged, ButtonPressed, ButtonReleased and HatChanged.
type Event interface {
	event()
}

// ChannelsChanged is the combined update emitted once per polling cycle. A
// channel with no axis mapped to it carries NaN.
type ChannelsChanged struct {
	Roll     float64
	Pitch    float64
	Yaw      float64
	Throttle float64
	Hat      Hat
	Buttons  uint16
}

// Channel returns the value of one logical channel.
func (c ChannelsChanged) Channel(ch Channel) float64 {
	switch ch {
	case ChannelRoll:
		return c.Roll
	case ChannelPitch:
		return c.Pitch
	case ChannelYaw:
		return c.Yaw
	case ChannelThrottle:
		return c.Throttle
	}
	return nan
}

func (c *ChannelsChanged) set(ch Channel, v float64) {
	switch ch {
	case ChannelRoll:
		c.Roll = v
	case ChannelPitch:
		c.Pitch = v
	case ChannelYaw:
		c.Yaw = v
	case ChannelThrottle:
		c.Throttle = v
	}
}

// AxisChanged reports raw travel of a physical axis, independent of
// calibration and mapping. Value is Raw scaled by the device range.
type AxisChanged struct {
	Axis  int
	Raw   int16
	Value float64
}

// ButtonPressed reports a button going down.
type ButtonPressed struct {
	Button int
}

// ButtonReleased reports a button going up.
type ButtonReleased struct {
	Button int
}

// HatChanged reports a new hat direction.
type HatChanged struct {
	Hat
}

func (ChannelsChanged) event() {}
func (AxisChanged) event()     {}
func (ButtonPressed) event()   {}
func (ButtonReleased) event()  {}
func (HatChanged) event()      {}

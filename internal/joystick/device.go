package joystick

const (
	// SDLJoystickMin and SDLJoystickMax bound raw axis samples.
	SDLJoystickMin = -32768
	SDLJoystickMax = 32767

	// MaxAxes is the number of physical axis slots that carry calibration
	// and mapping. Axes beyond it are ignored.
	MaxAxes = 10

	// MaxButtons is the width of the button bitfield.
	MaxButtons = 16
)

// Device enumerates and opens attached joysticks. Implementations live in
// internal/device.
type Device interface {
	// Count returns the number of attached joysticks. Valid ids are
	// 0..Count()-1.
	Count() int

	// Name returns the display name of joystick id, or "" if unknown.
	Name(id int) string

	Open(id int) (Handle, error)
}

// Handle is an open joystick. Reads return the last known hardware state and
// never block waiting for input.
type Handle interface {
	Name() string
	NumAxes() int
	NumButtons() int

	// Axes returns the current raw axis values.
	Axes() ([]int16, error)

	// Buttons returns the button state, bit n set while button n is down.
	Buttons() (uint16, error)

	// Hat returns the direction of the first hat, (0,0) if it has none.
	Hat() (Hat, error)

	Close() error
}

// Hat is a hat switch position. X is -1 left, +1 right; Y is -1 back/down,
// +1 forward/up.
type Hat struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DeviceInfo is the cached description of the active joystick.
type DeviceInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	NumAxes    int    `json:"numAxes"`
	NumButtons int    `json:"numButtons"`
	Open       bool   `json:"open"`
}

// Sample is one poll of the device.
type Sample struct {
	Axes    [MaxAxes]int16
	NumAxes int
	Buttons uint16
	Hat     Hat
}

// readSample pulls a complete Sample from h. Any failed read fails the whole
// sample.
func readSample(h Handle) (Sample, error) {
	var s Sample

	axes, err := h.Axes()
	if err != nil {
		return s, err
	}
	s.NumAxes = copy(s.Axes[:], axes)

	if s.Buttons, err = h.Buttons(); err != nil {
		return s, err
	}
	if s.Hat, err = h.Hat(); err != nil {
		return s, err
	}
	return s, nil
}

// Hat switch bits as reported by SDL.
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)

// HatFromMask converts a hat bitmask to a direction vector with Y positive
// forward.
func HatFromMask(v uint8) Hat {
	var h Hat
	if v&HatUp != 0 {
		h.Y++
	}
	if v&HatDown != 0 {
		h.Y--
	}
	if v&HatRight != 0 {
		h.X++
	}
	if v&HatLeft != 0 {
		h.X--
	}
	return h
}

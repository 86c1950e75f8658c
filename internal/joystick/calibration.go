package joystick

import "math"

// MinExtent is the smallest calibration extent used as a divisor. Smaller
// (or non-finite) extents are raised to it.
const MinExtent = 1.0

// AxisCalibration is the per-axis-slot calibration entry. Extents are
// magnitudes of the raw value reached at full deflection on each side.
type AxisCalibration struct {
	Positive     float64 `json:"positive"`
	Negative     float64 `json:"negative"`
	Inverted     bool    `json:"inverted"`
	RangeLimited bool    `json:"rangeLimited"`
}

// DefaultCalibration spans the full device range with no inversion or limit.
func DefaultCalibration() AxisCalibration {
	return AxisCalibration{
		Positive: SDLJoystickMax,
		Negative: -SDLJoystickMin,
	}
}

func clampExtent(e float64) float64 {
	e = math.Abs(e)
	if math.IsNaN(e) || math.IsInf(e, 0) || e < MinExtent {
		return MinExtent
	}
	return e
}

// Normalize converts a raw sample to [-1, 1] using the extent of the side the
// sample is on. Travel beyond the extent is clamped. Inversion is applied to
// the symmetric value; a range-limited axis then drops its negative half so
// its output always lies in [0, 1].
func (c AxisCalibration) Normalize(raw int16) float64 {
	v := float64(raw)
	if v >= 0 {
		v = math.Min(v/clampExtent(c.Positive), 1)
	} else {
		v = math.Max(v/clampExtent(c.Negative), -1)
	}

	if c.Inverted && v != 0 {
		v = -v
	}
	if c.RangeLimited && v < 0 {
		v = 0
	}
	return v
}

// NormalizeRaw scales a raw sample by the device range only, ignoring any
// calibration.
func NormalizeRaw(raw int16) float64 {
	v := float64(raw) / SDLJoystickMax
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// calibrationCapture records the largest travel seen on each side of every
// axis while a calibration is in progress.
type calibrationCapture struct {
	pos [MaxAxes]float64
	neg [MaxAxes]float64
}

func (c *calibrationCapture) observe(s Sample) {
	for i := 0; i < s.NumAxes; i++ {
		v := float64(s.Axes[i])
		if v > c.pos[i] {
			c.pos[i] = v
		}
		if -v > c.neg[i] {
			c.neg[i] = -v
		}
	}
}

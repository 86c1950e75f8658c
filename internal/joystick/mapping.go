package joystick

import (
	"fmt"
	"log"
	"math"
)

func checkAxis(axis int) error {
	if axis < 0 || axis >= MaxAxes {
		return fmt.Errorf("%w: %d", ErrInvalidAxis, axis)
	}
	return nil
}

// setMapping assigns ch to axis, first taking ch away from whichever axis
// held it so a channel is never driven by two axes.
func (s *state) setMapping(axis int, ch Channel) {
	if ch != ChannelNone {
		for i := range s.mapping {
			if s.mapping[i] == ch {
				s.mapping[i] = ChannelNone
			}
		}
	}
	s.mapping[axis] = ch
}

// SetAxisMapping makes axis drive channel ch. Mapping ChannelNone unassigns
// the axis.
func (d *Driver) SetAxisMapping(axis int, ch Channel) error {
	if err := checkAxis(axis); err != nil {
		log.Printf("joystick: set mapping: %v", err)
		return err
	}
	if !ch.Valid() {
		err := fmt.Errorf("%w: %d", ErrInvalidChannel, uint8(ch))
		log.Printf("joystick: set mapping: %v", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.setMapping(axis, ch)
	return nil
}

// SetAxisInversion sets whether axis is negated.
func (d *Driver) SetAxisInversion(axis int, inverted bool) error {
	if err := checkAxis(axis); err != nil {
		log.Printf("joystick: set inversion: %v", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.calibration[axis].Inverted = inverted
	return nil
}

// SetAxisRangeLimit sets whether axis only reports its positive half. Used for
// throttles on self-centering axes.
func (d *Driver) SetAxisRangeLimit(axis int, limited bool) error {
	if err := checkAxis(axis); err != nil {
		log.Printf("joystick: set range limit: %v", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.calibration[axis].RangeLimited = limited
	return nil
}

// SetAxisCalibration sets the extents of axis. Both are taken as magnitudes
// and raised to MinExtent if smaller.
func (d *Driver) SetAxisCalibration(axis int, positive, negative float64) error {
	if err := checkAxis(axis); err != nil {
		log.Printf("joystick: set calibration: %v", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.calibration[axis].Positive = clampExtent(positive)
	d.st.calibration[axis].Negative = clampExtent(negative)
	return nil
}

// ResetAxisCalibration restores the default extents of axis, keeping its
// inversion and range-limit flags.
func (d *Driver) ResetAxisCalibration(axis int) error {
	if err := checkAxis(axis); err != nil {
		return err
	}

	def := DefaultCalibration()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.calibration[axis].Positive = def.Positive
	d.st.calibration[axis].Negative = def.Negative
	return nil
}

// BeginCalibration starts recording the travel of every axis. Move each axis
// to both ends and then call EndCalibration.
func (d *Driver) BeginCalibration() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.capture = &calibrationCapture{}
}

// EndCalibration commits the recorded extents of every axis that travelled to
// both sides of centre and returns the resulting entries.
func (d *Driver) EndCalibration() map[int]AxisCalibration {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.st.capture
	d.st.capture = nil
	if c == nil {
		return nil
	}

	committed := make(map[int]AxisCalibration)
	for i := 0; i < MaxAxes; i++ {
		if c.pos[i] < MinExtent || c.neg[i] < MinExtent {
			continue
		}
		d.st.calibration[i].Positive = c.pos[i]
		d.st.calibration[i].Negative = c.neg[i]
		committed[i] = d.st.calibration[i]
	}
	return committed
}

// CancelCalibration discards a calibration in progress.
func (d *Driver) CancelCalibration() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.capture = nil
}

// Calibrating reports whether a calibration is in progress.
func (d *Driver) Calibrating() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.capture != nil
}

// Mapping returns the channel driven by axis.
func (d *Driver) Mapping(axis int) Channel {
	if checkAxis(axis) != nil {
		return ChannelNone
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.mapping[axis]
}

// MappedAxis returns the axis driving ch, if any.
func (d *Driver) MappedAxis(ch Channel) (int, bool) {
	if ch == ChannelNone || !ch.Valid() {
		return -1, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.st.mapping {
		if c == ch {
			return i, true
		}
	}
	return -1, false
}

// Calibration returns the calibration entry of axis.
func (d *Driver) Calibration(axis int) AxisCalibration {
	if checkAxis(axis) != nil {
		return AxisCalibration{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.calibration[axis]
}

func (d *Driver) Inverted(axis int) bool {
	return d.Calibration(axis).Inverted
}

func (d *Driver) RangeLimited(axis int) bool {
	return d.Calibration(axis).RangeLimited
}

// CurrentValue returns the calibrated value of axis from the last sample, NaN
// if there is none.
func (d *Driver) CurrentValue(axis int) float64 {
	if checkAxis(axis) != nil {
		return math.NaN()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.last == nil || axis >= d.st.last.NumAxes {
		return math.NaN()
	}
	return d.st.calibration[axis].Normalize(d.st.last.Axes[axis])
}

// Channels returns the latest combined update. All channels are NaN while no
// device is delivering samples.
func (d *Driver) Channels() ChannelsChanged {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.current
}

// Device returns the cached description of the active joystick.
func (d *Driver) Device() DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.info
}

// AxisStatus describes one physical axis slot.
type AxisStatus struct {
	Axis        int
	Present     bool
	Raw         int16
	Value       float64
	Channel     Channel
	Calibration AxisCalibration
}

// Status is a consistent snapshot of the driver for display.
type Status struct {
	Device      DeviceInfo
	Channels    ChannelsChanged
	Axes        [MaxAxes]AxisStatus
	Calibrating bool
}

// Status returns a snapshot of the device, tables and last sample taken under
// a single lock.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{
		Device:      d.st.info,
		Channels:    d.st.current,
		Calibrating: d.st.capture != nil,
	}
	for i := range st.Axes {
		a := AxisStatus{
			Axis:        i,
			Value:       math.NaN(),
			Channel:     d.st.mapping[i],
			Calibration: d.st.calibration[i],
		}
		if d.st.last != nil && i < d.st.last.NumAxes {
			a.Present = true
			a.Raw = d.st.last.Axes[i]
			a.Value = a.Calibration.Normalize(a.Raw)
		}
		st.Axes[i] = a
	}
	return st
}

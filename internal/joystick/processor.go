package joystick

import "math"

var nan = math.NaN()

// unavailable is the combined update reported when no sample is available.
var unavailable = ChannelsChanged{Roll: nan, Pitch: nan, Yaw: nan, Throttle: nan}

// process turns one sample into the events of a polling cycle. prev is the
// snapshot of the previous cycle on the same device, or nil if there is none,
// in which case no transitions are reported. Discrete events come first and
// the combined update is always last.
func process(prev *Sample, cur Sample, cal *[MaxAxes]AxisCalibration, mapping *[MaxAxes]Channel) []Event {
	var events []Event

	if prev != nil {
		for i := 0; i < cur.NumAxes; i++ {
			if i < prev.NumAxes && prev.Axes[i] == cur.Axes[i] {
				continue
			}
			events = append(events, AxisChanged{
				Axis:  i,
				Raw:   cur.Axes[i],
				Value: NormalizeRaw(cur.Axes[i]),
			})
		}

		if changed := prev.Buttons ^ cur.Buttons; changed != 0 {
			for i := 0; i < MaxButtons; i++ {
				bit := uint16(1) << i
				if changed&bit == 0 {
					continue
				}
				if cur.Buttons&bit != 0 {
					events = append(events, ButtonPressed{Button: i})
				} else {
					events = append(events, ButtonReleased{Button: i})
				}
			}
		}

		if prev.Hat != cur.Hat {
			events = append(events, HatChanged{cur.Hat})
		}
	}

	return append(events, channels(cur, cal, mapping))
}

// channels computes the combined update for a sample. Channels whose axis is
// unmapped, or mapped to an axis the device doesn't have, are NaN.
func channels(s Sample, cal *[MaxAxes]AxisCalibration, mapping *[MaxAxes]Channel) ChannelsChanged {
	out := unavailable
	out.Hat = s.Hat
	out.Buttons = s.Buttons

	for axis, ch := range mapping {
		if ch == ChannelNone || axis >= s.NumAxes {
			continue
		}
		out.set(ch, cal[axis].Normalize(s.Axes[axis]))
	}
	return out
}

package joystick

import (
	"fmt"
	"log"

	"github.com/spf13/cast"
)

// Settings is the external key/value store calibration and mapping are
// persisted in. Values come back as whatever type the store decoded.
type Settings interface {
	Load(key string) (any, bool)
	Store(key string, value any)
}

// Syncer is implemented by settings stores that buffer writes.
type Syncer interface {
	Sync() error
}

func axisKey(axis int, field string) string {
	return fmt.Sprintf("joystick.axes.%d.%s", axis, field)
}

// storedAxis holds the entries found for one axis; nil fields were absent
// or unconvertible.
type storedAxis struct {
	positive *float64
	negative *float64
	inverted *bool
	limited  *bool
	mapping  *Channel
}

// LoadSettings reads calibration and mapping from the settings store. Entries
// missing from the store, or holding values that can't be converted, keep
// their current value. The store is read without the lock held; only the
// entries found are applied.
func (d *Driver) LoadSettings() error {
	if d.settings == nil {
		return ErrNoSettings
	}

	loaded := make([]storedAxis, MaxAxes)
	for i := range loaded {
		a := &loaded[i]
		a.positive = d.loadFloat(axisKey(i, "positive"))
		a.negative = d.loadFloat(axisKey(i, "negative"))
		a.inverted = d.loadBool(axisKey(i, "inverted"))
		a.limited = d.loadBool(axisKey(i, "limited"))

		key := axisKey(i, "mapping")
		if v, ok := d.settings.Load(key); ok {
			ch, err := toChannel(v)
			if err != nil {
				log.Printf("joystick: settings %s: %v", key, err)
				continue
			}
			a.mapping = &ch
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range loaded {
		cal := &d.st.calibration[i]
		if a.positive != nil {
			cal.Positive = clampExtent(*a.positive)
		}
		if a.negative != nil {
			cal.Negative = clampExtent(*a.negative)
		}
		if a.inverted != nil {
			cal.Inverted = *a.inverted
		}
		if a.limited != nil {
			cal.RangeLimited = *a.limited
		}
		if a.mapping != nil {
			d.st.setMapping(i, *a.mapping)
		}
	}
	return nil
}

// StoreSettings writes calibration and mapping to the settings store and
// syncs it if the store supports that.
func (d *Driver) StoreSettings() error {
	if d.settings == nil {
		return ErrNoSettings
	}

	d.mu.Lock()
	cal := d.st.calibration
	mapping := d.st.mapping
	d.mu.Unlock()

	for i := 0; i < MaxAxes; i++ {
		d.settings.Store(axisKey(i, "positive"), cal[i].Positive)
		d.settings.Store(axisKey(i, "negative"), cal[i].Negative)
		d.settings.Store(axisKey(i, "inverted"), cal[i].Inverted)
		d.settings.Store(axisKey(i, "limited"), cal[i].RangeLimited)
		d.settings.Store(axisKey(i, "mapping"), mapping[i].String())
	}

	if s, ok := d.settings.(Syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("store joystick settings: %w", err)
		}
	}
	return nil
}

func (d *Driver) loadFloat(key string) *float64 {
	v, ok := d.settings.Load(key)
	if !ok {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		log.Printf("joystick: settings %s: %v", key, err)
		return nil
	}
	return &f
}

func (d *Driver) loadBool(key string) *bool {
	v, ok := d.settings.Load(key)
	if !ok {
		return nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		log.Printf("joystick: settings %s: %v", key, err)
		return nil
	}
	return &b
}

// toChannel accepts a channel name or its numeric value.
func toChannel(v any) (Channel, error) {
	switch v := v.(type) {
	case Channel:
		if !v.Valid() {
			return ChannelNone, fmt.Errorf("%w: %d", ErrInvalidChannel, uint8(v))
		}
		return v, nil
	case string:
		if n, err := cast.ToIntE(v); err == nil {
			return toChannel(n)
		}
		return ParseChannel(v)
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return ChannelNone, fmt.Errorf("%w: %v", ErrInvalidChannel, v)
	}
	if n < 0 || n >= int(numChannels) {
		return ChannelNone, fmt.Errorf("%w: %d", ErrInvalidChannel, n)
	}
	return Channel(n), nil
}

package joystick

import "errors"

var (
	// ErrInvalidAxis is returned for axis indices outside [0, MaxAxes).
	ErrInvalidAxis = errors.New("invalid axis")

	// ErrInvalidChannel is returned for mapping requests naming no known channel.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrDeviceUnavailable means no device is open or the requested one could
	// not be opened.
	ErrDeviceUnavailable = errors.New("joystick unavailable")

	// ErrNoSettings is returned by LoadSettings/StoreSettings when the driver
	// was created without a settings store.
	ErrNoSettings = errors.New("no settings store")
)

// Package linuxjs reads joysticks through the kernel joystick API
// (/dev/input/jsN on Linux, winmm on Windows).
package linuxjs

import (
	"math"
	"sync"

	js "github.com/0xcafed00d/joystick"

	"github.com/soar/joyinput/internal/joystick"
)

// MaxDevices bounds the ids Count tries to open.
const MaxDevices = 16

// open is replaced in tests.
var open = js.Open

// Backend implements joystick.Device.
type Backend struct{}

// New returns a kernel joystick backend. It holds no resources of its own.
func New() *Backend {
	return &Backend{}
}

// Count reports how many consecutive device ids starting at 0 can be opened.
func (b *Backend) Count() int {
	n := 0
	for id := 0; id < MaxDevices; id++ {
		j, err := open(id)
		if err != nil {
			break
		}
		j.Close()
		n++
	}
	return n
}

func (b *Backend) Name(id int) string {
	j, err := open(id)
	if err != nil {
		return ""
	}
	defer j.Close()
	return j.Name()
}

func (b *Backend) Open(id int) (joystick.Handle, error) {
	j, err := open(id)
	if err != nil {
		return nil, err
	}
	return &handle{js: j}, nil
}

// handle reads the device once per Axes call; Buttons and Hat report the
// state captured by that read.
type handle struct {
	mu    sync.Mutex
	js    js.Joystick
	state js.State
}

func (h *handle) Name() string    { return h.js.Name() }
func (h *handle) NumAxes() int    { return h.js.AxisCount() }
func (h *handle) NumButtons() int { return min(h.js.ButtonCount(), joystick.MaxButtons) }

func (h *handle) Axes() ([]int16, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, err := h.js.Read()
	if err != nil {
		return nil, err
	}
	h.state = state

	axes := make([]int16, len(state.AxisData))
	for i, v := range state.AxisData {
		axes[i] = clampAxis(v)
	}
	return axes, nil
}

func (h *handle) Buttons() (uint16, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint16(h.state.Buttons & 0xFFFF), nil
}

// Hat is always centered: the kernel API reports hat switches as axes.
func (h *handle) Hat() (joystick.Hat, error) {
	return joystick.Hat{}, nil
}

func (h *handle) Close() error {
	h.js.Close()
	return nil
}

func clampAxis(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

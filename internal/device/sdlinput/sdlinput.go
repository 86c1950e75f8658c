// Package sdlinput reads joysticks through SDL3.
package sdlinput

import (
	"fmt"
	"log"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/joyinput/internal/device/osthread"
	"github.com/soar/joyinput/internal/joystick"
)

// Backend is the SDL joystick subsystem. SDL is initialised, pumped, read and
// shut down on one locked OS thread; every method hands its work to that
// thread and waits for it. Joystick ids are indices into the list of attached
// joysticks at the time of the call.
type Backend struct {
	thread *osthread.Thread
}

// Init starts the SDL thread and initialises the joystick subsystem. Close
// must be called when done.
func Init() (*Backend, error) {
	th, err := osthread.Start(func() error {
		if !sdl.Init(sdl.InitJoystick) {
			return fmt.Errorf("SDL init failed: %s", sdl.GetError())
		}
		return nil
	}, sdl.Quit)
	if err != nil {
		return nil, err
	}
	log.Println("SDL3 joystick subsystem initialized")
	return &Backend{thread: th}, nil
}

func (b *Backend) do(fn func()) error {
	return b.thread.Do(fn)
}

// Close shuts SDL down. Open handles must be closed first.
func (b *Backend) Close() {
	b.thread.Close()
}

// pump lets SDL update its joystick state and device list.
func pump() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
	}
}

// instance must run on the SDL thread.
func instance(id int) (sdl.JoystickID, bool) {
	pump()
	ids := sdl.GetJoysticks()
	if id < 0 || id >= len(ids) {
		return 0, false
	}
	return ids[id], true
}

func (b *Backend) Count() int {
	var n int
	b.do(func() {
		pump()
		n = len(sdl.GetJoysticks())
	})
	return n
}

func (b *Backend) Name(id int) string {
	var name string
	b.do(func() {
		if inst, ok := instance(id); ok {
			name = sdl.GetJoystickNameForID(inst)
		}
	})
	return name
}

func (b *Backend) Open(id int) (joystick.Handle, error) {
	var (
		h   *handle
		err error
	)
	if derr := b.do(func() {
		inst, ok := instance(id)
		if !ok {
			err = fmt.Errorf("no joystick with id %d", id)
			return
		}
		js := sdl.OpenJoystick(inst)
		if js == nil {
			err = fmt.Errorf("open joystick %d: %s", id, sdl.GetError())
			return
		}
		h = &handle{
			backend: b,
			js:      js,
			name:    sdl.GetJoystickName(js),
			axes:    int(sdl.GetNumJoystickAxes(js)),
			buttons: int(sdl.GetNumJoystickButtons(js)),
			hats:    int(sdl.GetNumJoystickHats(js)),
		}
	}); derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, err
	}

	h.values = make([]int16, h.axes)
	log.Printf("SDL joystick opened: %s axes=%d buttons=%d hats=%d", h.name, h.axes, h.buttons, h.hats)
	return h, nil
}

// handle fields other than the counts are only touched on the SDL thread.
type handle struct {
	backend *Backend
	js      *sdl.Joystick
	name    string
	axes    int
	buttons int
	hats    int
	values  []int16
}

func (h *handle) Name() string    { return h.name }
func (h *handle) NumAxes() int    { return h.axes }
func (h *handle) NumButtons() int { return h.buttons }

func (h *handle) connected() error {
	if h.js == nil || !sdl.JoystickConnected(h.js) {
		return fmt.Errorf("%s: disconnected", h.name)
	}
	return nil
}

// Axes also pumps SDL events, so it should be the first read of a cycle.
func (h *handle) Axes() ([]int16, error) {
	var (
		out []int16
		err error
	)
	if derr := h.backend.do(func() {
		pump()
		if err = h.connected(); err != nil {
			return
		}
		for i := range h.values {
			h.values[i] = sdl.GetJoystickAxis(h.js, int32(i))
		}
		out = append([]int16(nil), h.values...)
	}); derr != nil {
		return nil, derr
	}
	return out, err
}

func (h *handle) Buttons() (uint16, error) {
	var (
		bits uint16
		err  error
	)
	if derr := h.backend.do(func() {
		if err = h.connected(); err != nil {
			return
		}
		for i := 0; i < h.buttons && i < joystick.MaxButtons; i++ {
			if sdl.GetJoystickButton(h.js, int32(i)) {
				bits |= 1 << i
			}
		}
	}); derr != nil {
		return 0, derr
	}
	return bits, err
}

func (h *handle) Hat() (joystick.Hat, error) {
	var (
		hat joystick.Hat
		err error
	)
	if derr := h.backend.do(func() {
		if err = h.connected(); err != nil || h.hats == 0 {
			return
		}
		hat = joystick.HatFromMask(sdl.GetJoystickHat(h.js, 0))
	}); derr != nil {
		return joystick.Hat{}, derr
	}
	return hat, err
}

func (h *handle) Close() error {
	return h.backend.do(func() {
		if h.js != nil {
			sdl.CloseJoystick(h.js)
			h.js = nil
		}
	})
}

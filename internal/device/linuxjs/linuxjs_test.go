package linuxjs

import (
	"errors"
	"testing"

	js "github.com/0xcafed00d/joystick"
)

type fakeJoystick struct {
	name    string
	axes    int
	buttons int
	state   js.State
	err     error
	closed  bool
}

func (f *fakeJoystick) AxisCount() int          { return f.axes }
func (f *fakeJoystick) ButtonCount() int        { return f.buttons }
func (f *fakeJoystick) Name() string            { return f.name }
func (f *fakeJoystick) Read() (js.State, error) { return f.state, f.err }
func (f *fakeJoystick) Close()                  { f.closed = true }

func withDevices(t *testing.T, devices ...*fakeJoystick) {
	t.Helper()
	prev := open
	open = func(id int) (js.Joystick, error) {
		if id < 0 || id >= len(devices) {
			return nil, errors.New("no device")
		}
		return devices[id], nil
	}
	t.Cleanup(func() { open = prev })
}

func TestCountAndName(t *testing.T) {
	a := &fakeJoystick{name: "Stick A"}
	b := &fakeJoystick{name: "Stick B"}
	withDevices(t, a, b)

	backend := New()
	if got := backend.Count(); got != 2 {
		t.Fatalf("Count() = %d; want 2", got)
	}
	if got := backend.Name(1); got != "Stick B" {
		t.Fatalf("Name(1) = %q", got)
	}
	if got := backend.Name(5); got != "" {
		t.Fatalf("Name(5) = %q; want empty", got)
	}
	if !a.closed || !b.closed {
		t.Fatal("probing should close devices")
	}
}

func TestHandleRead(t *testing.T) {
	dev := &fakeJoystick{
		name:    "Stick",
		axes:    3,
		buttons: 20,
		state: js.State{
			AxisData: []int{40000, -40000, 123},
			Buttons:  0x000F0005,
		},
	}
	withDevices(t, dev)

	h, err := New().Open(0)
	if err != nil {
		t.Fatal(err)
	}
	if h.NumButtons() != 16 {
		t.Errorf("NumButtons() = %d; want 16", h.NumButtons())
	}

	axes, err := h.Axes()
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{32767, -32768, 123}
	for i := range want {
		if axes[i] != want[i] {
			t.Errorf("axis %d = %d; want %d", i, axes[i], want[i])
		}
	}

	buttons, _ := h.Buttons()
	if buttons != 0x0005 {
		t.Errorf("Buttons() = 0x%04X; want 0x0005", buttons)
	}

	dev.err = errors.New("read failed")
	if _, err := h.Axes(); err == nil {
		t.Error("expected read error")
	}

	h.Close()
	if !dev.closed {
		t.Error("handle not closed")
	}
}

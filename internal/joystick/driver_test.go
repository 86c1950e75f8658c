package joystick

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

func TestDeviceSwitchDoesNotReplayState(t *testing.T) {
	a := &fakeHandle{name: "A", axes: make([]int16, 4), buttons: 0b1001, hat: Hat{X: 1}}
	b := &fakeHandle{name: "B", axes: make([]int16, 2)}
	d := New(&fakeDevice{handles: []*fakeHandle{a, b}}, Options{})

	sub := d.Subscribe(256)
	defer sub.Close()

	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}
	d.cycle()
	if events := drain(sub); len(events) != 1 {
		t.Fatalf("A steady state produced %#v", events)
	}

	if err := d.SetActiveJoystick(1); err != nil {
		t.Fatal(err)
	}
	if !a.isClosed() {
		t.Fatal("A was not closed on switch")
	}
	if info := d.Device(); info.Name != "B" || info.NumAxes != 2 || !info.Open {
		t.Fatalf("device info %+v", info)
	}

	d.cycle()
	events := drain(sub)
	if n := countEvents[ButtonReleased](events); n != 0 {
		t.Fatalf("%d spurious releases after switch", n)
	}
	if n := countEvents[HatChanged](events); n != 0 {
		t.Fatalf("%d spurious hat events after switch", n)
	}
	if n := countEvents[ChannelsChanged](events); n != 1 {
		t.Fatalf("expected one combined update, got %d", n)
	}

	// a real press on B is still reported
	b.set(func(h *fakeHandle) { h.buttons = 0b10 })
	d.cycle()
	events = drain(sub)
	if n := countEvents[ButtonPressed](events); n != 1 {
		t.Fatalf("expected one press on B, got %#v", events)
	}
}

func TestStaleSampleDiscardedAfterSwitch(t *testing.T) {
	a := &fakeHandle{name: "A", axes: make([]int16, 2), buttons: 1}
	b := &fakeHandle{name: "B", axes: make([]int16, 2)}
	d := New(&fakeDevice{handles: []*fakeHandle{a, b}}, Options{})

	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}
	d.devMu.Lock()
	gen := d.handleGen
	d.devMu.Unlock()

	if err := d.SetActiveJoystick(1); err != nil {
		t.Fatal(err)
	}
	if events := d.apply(gen, Sample{Buttons: 1}); events != nil {
		t.Fatalf("sample from A applied to B: %#v", events)
	}
}

func TestSetActiveJoystickUnavailable(t *testing.T) {
	d := New(&fakeDevice{}, Options{})

	err := d.SetActiveJoystick(3)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("got %v", err)
	}
	if d.Device().Open {
		t.Fatal("device reported open")
	}
	if d.cycle() {
		t.Fatal("cycle sampled without a device")
	}
	if c := d.Channels(); !math.IsNaN(c.Roll) || !math.IsNaN(c.Throttle) {
		t.Fatalf("channels %+v", c)
	}
}

func TestSetActiveJoystickNone(t *testing.T) {
	h := &fakeHandle{name: "stick", axes: make([]int16, 2)}
	d := New(&fakeDevice{handles: []*fakeHandle{h}}, Options{})

	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}
	if err := d.SetActiveJoystick(-1); err != nil {
		t.Fatal(err)
	}
	if !h.isClosed() || d.Device().Open {
		t.Fatal("device still open")
	}
}

func TestReadFailureMeansNoSignal(t *testing.T) {
	h := &fakeHandle{name: "stick", axes: []int16{32767, 0}}
	d := New(&fakeDevice{handles: []*fakeHandle{h}}, Options{})
	if err := d.SetAxisMapping(0, ChannelRoll); err != nil {
		t.Fatal(err)
	}
	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}

	sub := d.Subscribe(16)
	defer sub.Close()

	if !d.cycle() || d.Channels().Roll != 1 {
		t.Fatalf("channels %+v", d.Channels())
	}

	h.set(func(h *fakeHandle) { h.readErr = errUnplugged })
	drain(sub)
	if d.cycle() {
		t.Fatal("failed read reported as a sample")
	}
	if events := drain(sub); len(events) != 0 {
		t.Fatalf("failed read emitted %#v", events)
	}
	if !math.IsNaN(d.Channels().Roll) {
		t.Fatalf("roll %v after failed read", d.Channels().Roll)
	}

	// next cycle re-evaluates the device
	h.set(func(h *fakeHandle) { h.readErr = nil })
	if !d.cycle() || d.Channels().Roll != 1 {
		t.Fatalf("channels %+v after recovery", d.Channels())
	}
}

func TestUnmappedThrottleIsNaN(t *testing.T) {
	h := &fakeHandle{name: "stick", axes: []int16{100, 200, 300, 400}}
	d := New(&fakeDevice{handles: []*fakeHandle{h}}, Options{})
	for axis, ch := range []Channel{ChannelRoll, ChannelPitch, ChannelYaw} {
		if err := d.SetAxisMapping(axis, ch); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}

	sub := d.Subscribe(64)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		h.set(func(h *fakeHandle) { h.axes[0] += 100 })
		d.cycle()
	}

	n := 0
	for _, ev := range drain(sub) {
		c, ok := ev.(ChannelsChanged)
		if !ok {
			continue
		}
		n++
		if !math.IsNaN(c.Throttle) {
			t.Fatalf("throttle %v", c.Throttle)
		}
		if math.IsNaN(c.Roll) || math.IsNaN(c.Pitch) || math.IsNaN(c.Yaw) {
			t.Fatalf("mapped channel is NaN: %+v", c)
		}
	}
	if n != 5 {
		t.Fatalf("expected 5 combined updates, got %d", n)
	}
}

func TestRunAndShutdown(t *testing.T) {
	h := &fakeHandle{name: "stick", axes: make([]int16, 2)}
	settings := newMapSettings()
	d := New(&fakeDevice{handles: []*fakeHandle{h}}, Options{
		PollInterval: time.Millisecond,
		IdleInterval: time.Millisecond,
		Settings:     settings,
	})
	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}

	sub := d.Subscribe(256)
	defer sub.Close()

	d.Start(context.Background())

	h.set(func(h *fakeHandle) { h.buttons = 1 })

	timeout := time.After(2 * time.Second)
	pressed := false
	for !pressed {
		select {
		case ev := <-sub.Events():
			_, pressed = ev.(ButtonPressed)
		case <-timeout:
			t.Fatal("no button press observed")
		}
	}

	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !h.isClosed() {
		t.Fatal("device not closed on shutdown")
	}
	if settings.synced != 1 {
		t.Fatalf("settings synced %d times", settings.synced)
	}

	select {
	case <-d.exited:
	default:
		t.Fatal("Shutdown returned before the loop exited")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := New(&fakeDevice{}, Options{IdleInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMutationsWhileRunning(t *testing.T) {
	a := &fakeHandle{name: "A", axes: make([]int16, 4)}
	b := &fakeHandle{name: "B", axes: make([]int16, 6)}
	settings := newMapSettings()
	settings.values["joystick.axes.2.mapping"] = "yaw"
	settings.values["joystick.axes.2.inverted"] = true

	d := New(&fakeDevice{handles: []*fakeHandle{a, b}}, Options{
		PollInterval: time.Millisecond,
		IdleInterval: time.Millisecond,
		Settings:     settings,
	})
	if err := d.SetActiveJoystick(0); err != nil {
		t.Fatal(err)
	}

	sub := d.Subscribe(DefaultBuffer)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	select {
	case <-sub.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("sampling loop produced no events")
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// keep both devices moving
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			for _, h := range []*fakeHandle{a, b} {
				h.set(func(h *fakeHandle) {
					h.axes[0] = int16(i * 37)
					h.buttons = uint16(i)
					h.hat = Hat{X: i%3 - 1}
				})
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			case <-sub.Events():
			}
		}
	}()

	var mutators sync.WaitGroup
	for w := 0; w < 3; w++ {
		mutators.Add(1)
		go func(w int) {
			defer mutators.Done()
			for i := 0; i < 200; i++ {
				axis := (i + w) % MaxAxes
				_ = d.SetAxisMapping(axis, Channel(i%int(numChannels)))
				_ = d.SetAxisInversion(axis, i%2 == 0)
				_ = d.SetAxisRangeLimit(axis, i%3 == 0)
				if i%20 == w {
					_ = d.SetActiveJoystick(i%3 - 1)
				}
				if i%50 == 0 {
					if err := d.LoadSettings(); err != nil {
						t.Error(err)
					}
				}
				st := d.Status()
				_ = d.CurrentValue(axis)
				_ = d.Channels()

				seen := make(map[Channel]bool)
				for _, as := range st.Axes {
					if as.Channel == ChannelNone {
						continue
					}
					if seen[as.Channel] {
						t.Errorf("channel %v mapped to two axes", as.Channel)
						return
					}
					seen[as.Channel] = true
				}
			}
		}(w)
	}
	mutators.Wait()
	close(stop)
	wg.Wait()

	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if d.Device().Open {
		t.Fatal("device left open after shutdown")
	}
}

// Package joystick polls a joystick on a background goroutine, turns raw
// samples into calibrated roll/pitch/yaw/throttle values and publishes them,
// together with button, hat and raw axis transitions, to subscribers.
package joystick

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultPollInterval = 20 * time.Millisecond // ~50Hz
	DefaultIdleInterval = 250 * time.Millisecond
)

// Options configures a Driver. Zero values select the defaults.
type Options struct {
	PollInterval time.Duration
	IdleInterval time.Duration

	// Settings is where calibration and mapping are loaded from and stored
	// to. May be nil.
	Settings Settings
}

// state is everything the sampling loop shares with callers. It is only
// accessed with Driver.mu held.
type state struct {
	calibration [MaxAxes]AxisCalibration
	mapping     [MaxAxes]Channel

	info DeviceInfo

	// gen identifies the device the snapshot belongs to. It changes on every
	// switch so samples read from a previous device are discarded.
	gen  uint64
	last *Sample

	current ChannelsChanged
	capture *calibrationCapture
}

// Driver owns the active joystick and the sampling loop.
type Driver struct {
	dev      Device
	settings Settings
	emitter  *Emitter
	poll     time.Duration
	idle     time.Duration

	mu sync.Mutex
	st state

	// devMu serialises device I/O. It is always taken before mu.
	devMu     sync.Mutex
	handle    Handle
	handleGen uint64

	running  atomic.Bool
	done     atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	exited   chan struct{}

	vehicleMu sync.Mutex
	vehicle   *forwarder
}

// New creates a Driver with default calibration, no axis mappings and no
// open device.
func New(dev Device, opts Options) *Driver {
	d := &Driver{
		dev:      dev,
		settings: opts.Settings,
		emitter:  NewEmitter(),
		poll:     opts.PollInterval,
		idle:     opts.IdleInterval,
		quit:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	if d.poll <= 0 {
		d.poll = DefaultPollInterval
	}
	if d.idle <= 0 {
		d.idle = DefaultIdleInterval
	}

	for i := range d.st.calibration {
		d.st.calibration[i] = DefaultCalibration()
	}
	d.st.info.ID = -1
	d.st.current = unavailable

	return d
}

// Subscribe attaches a consumer to the driver's events.
func (d *Driver) Subscribe(buffer int) *Subscription {
	return d.emitter.Subscribe(buffer)
}

// Emitter returns the driver's event emitter.
func (d *Driver) Emitter() *Emitter {
	return d.emitter
}

// Start runs the sampling loop on a new goroutine.
func (d *Driver) Start(ctx context.Context) {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	go d.loop(ctx)
}

// Run runs the sampling loop on the calling goroutine until ctx is cancelled
// or Shutdown is called. The active device is closed before Run returns.
func (d *Driver) Run(ctx context.Context) {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	d.loop(ctx)
}

// Shutdown stops the sampling loop, waits for it to exit, detaches the
// vehicle and stores settings.
func (d *Driver) Shutdown() error {
	d.done.Store(true)
	d.quitOnce.Do(func() { close(d.quit) })

	if d.running.Load() {
		<-d.exited
	} else {
		d.closeDevice()
	}

	d.SetVehicle(nil)

	if d.settings == nil {
		return nil
	}
	return d.StoreSettings()
}

func (d *Driver) loop(ctx context.Context) {
	defer close(d.exited)
	defer d.closeDevice()

	log.Println("joystick: sampling loop started")
	defer log.Println("joystick: sampling loop stopped")

	for {
		if d.done.Load() || ctx.Err() != nil {
			return
		}

		wait := d.poll
		if !d.cycle() {
			wait = d.idle
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
		case <-d.quit:
		case <-t.C:
		}
		t.Stop()
	}
}

// cycle performs one poll. It returns false if there was nothing to read.
func (d *Driver) cycle() bool {
	d.devMu.Lock()
	h, gen := d.handle, d.handleGen
	if h == nil {
		d.devMu.Unlock()
		return false
	}
	s, err := readSample(h)
	d.devMu.Unlock()

	if err != nil {
		log.Printf("joystick: read failed: %v", err)
		d.mu.Lock()
		if d.st.gen == gen {
			d.st.current = unavailable
		}
		d.mu.Unlock()
		return false
	}

	if events := d.apply(gen, s); len(events) > 0 {
		d.emitter.publish(events...)
	}
	return true
}

// apply runs the signal processor against the shared tables and replaces the
// snapshot.
func (d *Driver) apply(gen uint64, s Sample) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.st.gen != gen {
		return nil
	}
	if d.st.capture != nil {
		d.st.capture.observe(s)
	}

	events := process(d.st.last, s, &d.st.calibration, &d.st.mapping)
	d.st.last = &s
	d.st.current = events[len(events)-1].(ChannelsChanged)
	return events
}

// SetActiveJoystick closes the current device and opens joystick id. The
// snapshot is primed with the new device's state so its first cycle doesn't
// report transitions against the old device. A negative id leaves no device
// open. If the open fails no device is active and the loop keeps idling.
func (d *Driver) SetActiveJoystick(id int) error {
	d.devMu.Lock()
	defer d.devMu.Unlock()

	if d.handle != nil {
		if err := d.handle.Close(); err != nil {
			log.Printf("joystick: close %q: %v", d.handle.Name(), err)
		}
		d.handle = nil
	}
	d.handleGen++
	gen := d.handleGen

	var (
		h   Handle
		err error
	)
	if id < 0 {
		err = fmt.Errorf("no joystick selected")
	} else if h, err = d.dev.Open(id); err == nil && h == nil {
		err = fmt.Errorf("no handle")
	}
	if err != nil {
		d.mu.Lock()
		d.st.gen = gen
		d.st.info = DeviceInfo{ID: id}
		d.st.last = nil
		d.st.current = unavailable
		d.mu.Unlock()

		if id < 0 {
			return nil
		}
		return fmt.Errorf("%w: joystick %d: %w", ErrDeviceUnavailable, id, err)
	}

	info := DeviceInfo{
		ID:         id,
		Name:       h.Name(),
		NumAxes:    h.NumAxes(),
		NumButtons: h.NumButtons(),
		Open:       true,
	}
	if info.NumAxes > MaxAxes {
		log.Printf("joystick: %q has %d axes, only the first %d are used", info.Name, info.NumAxes, MaxAxes)
	}

	var last *Sample
	if s, err := readSample(h); err != nil {
		log.Printf("joystick: priming %q: %v", info.Name, err)
	} else {
		last = &s
	}
	d.handle = h

	d.mu.Lock()
	d.st.gen = gen
	d.st.info = info
	d.st.last = last
	d.st.current = unavailable
	if last != nil {
		d.st.current = channels(*last, &d.st.calibration, &d.st.mapping)
	}
	d.mu.Unlock()

	log.Printf("joystick: active joystick %d: %s axes=%d buttons=%d", id, info.Name, info.NumAxes, info.NumButtons)
	return nil
}

func (d *Driver) closeDevice() {
	d.devMu.Lock()
	defer d.devMu.Unlock()

	if d.handle == nil {
		return
	}
	if err := d.handle.Close(); err != nil {
		log.Printf("joystick: close %q: %v", d.handle.Name(), err)
	}
	d.handle = nil
	d.handleGen++

	d.mu.Lock()
	d.st.gen = d.handleGen
	d.st.info.Open = false
	d.st.last = nil
	d.st.current = unavailable
	d.mu.Unlock()
}

// NumJoysticks returns the number of attached joysticks.
func (d *Driver) NumJoysticks() int {
	d.devMu.Lock()
	defer d.devMu.Unlock()
	return d.dev.Count()
}

// JoystickName returns the display name of joystick id.
func (d *Driver) JoystickName(id int) string {
	d.devMu.Lock()
	defer d.devMu.Unlock()
	return d.dev.Name(id)
}

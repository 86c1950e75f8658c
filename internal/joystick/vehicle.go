package joystick

// Vehicle is the controller that combined updates and button presses are
// forwarded to.
type Vehicle interface {
	SetManualControlCommands(c ChannelsChanged)
	ReceiveButton(button int)
}

// Reverser is implemented by vehicles that know whether they can drive a
// negative throttle.
type Reverser interface {
	SystemCanReverse() bool
}

type forwarder struct {
	sub  *Subscription
	quit chan struct{}
	done chan struct{}
}

// SetVehicle replaces the vehicle that receives the driver's output. A nil
// vehicle stops forwarding. The driver doesn't own the vehicle; it only holds
// the reference until the next SetVehicle.
func (d *Driver) SetVehicle(v Vehicle) {
	d.vehicleMu.Lock()
	defer d.vehicleMu.Unlock()

	if d.vehicle != nil {
		d.vehicle.stop()
		d.vehicle = nil
	}
	if v == nil {
		return
	}

	canReverse := true
	if r, ok := v.(Reverser); ok {
		canReverse = r.SystemCanReverse()
	}

	f := &forwarder{
		sub:  d.emitter.Subscribe(DefaultBuffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go f.run(v, canReverse)
	d.vehicle = f
}

func (f *forwarder) run(v Vehicle, canReverse bool) {
	defer close(f.done)

	for {
		var ev Event
		select {
		case <-f.quit:
			return
		case e, ok := <-f.sub.Events():
			if !ok {
				return
			}
			ev = e
		}

		// quit wins over buffered events
		select {
		case <-f.quit:
			return
		default:
		}

		switch ev := ev.(type) {
		case ChannelsChanged:
			// NaN compares false and is passed through
			if !canReverse && ev.Throttle < 0 {
				ev.Throttle = 0
			}
			v.SetManualControlCommands(ev)
		case ButtonPressed:
			v.ReceiveButton(ev.Button)
		}
	}
}

// stop drops events still buffered for the vehicle and waits for at most
// the call in progress.
func (f *forwarder) stop() {
	close(f.quit)
	f.sub.Close()
	<-f.done
}

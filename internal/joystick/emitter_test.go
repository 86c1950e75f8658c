package joystick

import "testing"

func TestEmitterFanOut(t *testing.T) {
	e := NewEmitter()
	a := e.Subscribe(4)
	b := e.Subscribe(4)

	e.publish(ButtonPressed{Button: 1}, HatChanged{Hat{X: 1}})

	for _, s := range []*Subscription{a, b} {
		events := drain(s)
		if len(events) != 2 {
			t.Fatalf("got %#v", events)
		}
		if _, ok := events[0].(ButtonPressed); !ok {
			t.Fatalf("order: %#v", events)
		}
	}

	a.Close()
	a.Close()
	if n := e.Subscribers(); n != 1 {
		t.Fatalf("%d subscribers", n)
	}
	if _, ok := <-a.Events(); ok {
		t.Fatal("closed subscription still open")
	}
	b.Close()
}

func TestEmitterDropsWhenFull(t *testing.T) {
	e := NewEmitter()
	s := e.Subscribe(1)
	defer s.Close()

	e.publish(ButtonPressed{Button: 0}, ButtonReleased{Button: 0}, HatChanged{})

	if events := drain(s); len(events) != 1 {
		t.Fatalf("got %#v", events)
	}
	if e.Dropped() != 2 {
		t.Fatalf("dropped %d", e.Dropped())
	}
}

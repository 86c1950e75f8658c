package joystick

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the subscription buffer used when Subscribe is given a
// non-positive size.
const DefaultBuffer = 64

// Emitter fans events out to any number of subscriptions. Delivery never
// blocks the publisher: a subscription whose buffer is full misses the event.
type Emitter struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	dropped atomic.Uint64
}

func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[uint64]*Subscription),
	}
}

// Subscription is one consumer's view of the event stream. Events from a
// single polling cycle arrive in emission order.
type Subscription struct {
	id      uint64
	emitter *Emitter
	events  chan Event
	once    sync.Once
}

// Subscribe attaches a new consumer. It may be called at any time, including
// while the sampling loop is running.
func (e *Emitter) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	s := &Subscription{
		id:      e.nextID,
		emitter: e,
		events:  make(chan Event, buffer),
	}
	e.subs[s.id] = s
	return s
}

// Events returns the channel events are delivered on. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		e := s.emitter
		e.mu.Lock()
		delete(e.subs, s.id)
		close(s.events)
		e.mu.Unlock()
	})
}

// Subscribers returns the number of attached subscriptions.
func (e *Emitter) Subscribers() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was
// not keeping up.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Emitter) publish(events ...Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.subs {
		for _, ev := range events {
			select {
			case s.events <- ev:
			default:
				// don't block the polling goroutine on a slow consumer
				e.dropped.Add(1)
			}
		}
	}
}

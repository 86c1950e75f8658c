package joystick

import (
	"errors"
	"fmt"
	"sync"
)

type fakeHandle struct {
	mu      sync.Mutex
	name    string
	axes    []int16
	buttons uint16
	hat     Hat
	readErr error
	closed  bool
}

func (h *fakeHandle) Name() string    { return h.name }
func (h *fakeHandle) NumAxes() int    { return len(h.axes) }
func (h *fakeHandle) NumButtons() int { return MaxButtons }

func (h *fakeHandle) Axes() ([]int16, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.readErr != nil {
		return nil, h.readErr
	}
	return append([]int16(nil), h.axes...), nil
}

func (h *fakeHandle) Buttons() (uint16, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buttons, h.readErr
}

func (h *fakeHandle) Hat() (Hat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hat, h.readErr
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) set(fn func(h *fakeHandle)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h)
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type fakeDevice struct {
	handles []*fakeHandle
}

func (d *fakeDevice) Count() int { return len(d.handles) }

func (d *fakeDevice) Name(id int) string {
	if id < 0 || id >= len(d.handles) {
		return ""
	}
	return d.handles[id].name
}

func (d *fakeDevice) Open(id int) (Handle, error) {
	if id < 0 || id >= len(d.handles) {
		return nil, fmt.Errorf("no joystick %d", id)
	}
	h := d.handles[id]
	h.set(func(h *fakeHandle) { h.closed = false })
	return h, nil
}

type mapSettings struct {
	values map[string]any
	synced int
	err    error
	onLoad func(key string)
}

func newMapSettings() *mapSettings {
	return &mapSettings{values: make(map[string]any)}
}

func (s *mapSettings) Load(key string) (any, bool) {
	if s.onLoad != nil {
		s.onLoad(key)
	}
	v, ok := s.values[key]
	return v, ok
}

func (s *mapSettings) Store(key string, value any) {
	s.values[key] = value
}

func (s *mapSettings) Sync() error {
	s.synced++
	return s.err
}

var errUnplugged = errors.New("unplugged")

// drain returns every event currently buffered on sub.
func drain(sub *Subscription) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func countEvents[T Event](events []Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

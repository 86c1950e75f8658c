// Package osthread runs functions on one locked OS thread, for C libraries
// that must be initialised, used and shut down from the same thread.
package osthread

import (
	"errors"
	"runtime"
	"sync"
)

var ErrClosed = errors.New("osthread: closed")

type Thread struct {
	mu     sync.RWMutex
	closed bool
	calls  chan func()
	done   chan struct{}
}

// Start locks a new goroutine to its OS thread and runs init there. If init
// fails the thread exits and the error is returned. fini runs on the thread
// after Close.
func Start(init func() error, fini func()) (*Thread, error) {
	t := &Thread{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}

	initErr := make(chan error, 1)
	go t.run(init, fini, initErr)
	if err := <-initErr; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Thread) run(init func() error, fini func(), initErr chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	if init != nil {
		if err := init(); err != nil {
			initErr <- err
			return
		}
	}
	initErr <- nil

	for fn := range t.calls {
		fn()
	}
	if fini != nil {
		fini()
	}
}

// Do runs fn on the thread and waits for it. It must not be called from fn.
func (t *Thread) Do(fn func()) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return ErrClosed
	}

	finished := make(chan struct{})
	t.calls <- func() {
		defer close(finished)
		fn()
	}
	<-finished
	return nil
}

// Close waits for pending calls, runs fini and stops the thread. Later calls
// to Do return ErrClosed.
func (t *Thread) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.calls)
	}
	t.mu.Unlock()
	<-t.done
}

package resilience

import (
	"fmt"
	"sync"
)

// Flight collapses concurrent loads of one key into a single call. Waiters
// get the leader's value and error; a panicking loader is reported to
// every caller as an error instead of leaving waiters blocked.
type Flight[K comparable, V any] struct {
	mu       sync.Mutex
	inflight map[K]*flightCall[V]
}

type flightCall[V any] struct {
	done    chan struct{}
	val     V
	err     error
	waiters int
}

// Do runs fn for key unless a call for key is already running. shared
// reports whether the result was handed to more than one caller.
func (f *Flight[K, V]) Do(key K, fn func() (V, error)) (val V, err error, shared bool) {
	f.mu.Lock()
	if f.inflight == nil {
		f.inflight = make(map[K]*flightCall[V])
	}
	if c, ok := f.inflight[key]; ok {
		c.waiters++
		f.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &flightCall[V]{done: make(chan struct{})}
	f.inflight[key] = c
	f.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("flight %v panicked: %v", key, r)
			err = c.err
		}
		f.mu.Lock()
		delete(f.inflight, key)
		shared = c.waiters > 0
		f.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn()
	return c.val, c.err, false
}

// InFlight reports how many keys are currently loading.
func (f *Flight[K, V]) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inflight)
}

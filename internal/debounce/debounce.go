// Package debounce delivers only the last of a burst of values.
package debounce

import (
	"sync"
	"time"
)

// Debouncer calls fn with the most recent value once no new value has
// arrived for delay. Deliveries never overlap, and fn must not call Stop or
// Flush on its own Debouncer.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	// deliver is held for the whole of a call to fn. Lock it before mu.
	deliver sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
}

// New returns a Debouncer that delivers to fn.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Stop discards any pending value and waits for a delivery already in
// progress to return.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
	d.gen++
	d.mu.Unlock()

	d.deliver.Lock()
	d.deliver.Unlock()
}

// Flush delivers a pending value immediately. It reports whether a value was
// delivered. Either way, any delivery started by the timer has returned by
// the time Flush does.
func (d *Debouncer[T]) Flush() bool {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.pending
	d.armed = false
	d.gen++
	d.mu.Unlock()

	d.fn(v)
	return true
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	// A Trigger, Stop or Flush since this timer was armed supersedes it.
	if gen != d.gen || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.fn(v)
}

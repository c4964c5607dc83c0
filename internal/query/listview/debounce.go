package listview

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is how long free text must settle before it is committed
const DefaultDebounceDelay = 400 * time.Millisecond

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock schedules on the runtime timer
var RealClock Clock = realClock{}

// Debouncer commits only the last value pushed within a quiet window
type Debouncer[T any] struct {
	delay  time.Duration
	clock  Clock
	commit func(T)

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer returns a debouncer calling commit with the settled value.
// A non-positive delay uses DefaultDebounceDelay and a nil clock uses RealClock.
func NewDebouncer[T any](delay time.Duration, clock Clock, commit func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer[T]{delay: delay, clock: clock, commit: commit}
}

// Delay returns the quiet window
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Push schedules v for commit, replacing any value still waiting
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A Push or Stop after this timer was armed supersedes it.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.commit(v)
	})
}

// Stop cancels a pending commit
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a value is waiting to be committed
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

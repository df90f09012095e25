package common

import (
	"sync"
	"time"
)

// Throttle admits at most one call per interval with a leading-edge
// trigger. Calls arriving inside the window are dropped, not queued.
// Cancel must be invoked on scoped teardown; a canceled throttle admits
// nothing.
type Throttle struct {
	now      func() time.Time
	last     time.Time
	interval time.Duration
	mu       sync.Mutex
	canceled bool
	fired    bool
}

// NewThrottle creates a throttle with the given minimum interval between
// admitted calls.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Throttle{
		interval: interval,
		now:      time.Now,
	}
}

// Do runs fn if the throttle window permits it and reports whether fn ran.
// The first call always runs (leading edge).
func (t *Throttle) Do(fn func()) bool {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return false
	}

	now := t.now()
	if t.fired && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return false
	}

	t.last = now
	t.fired = true
	t.mu.Unlock()

	fn()
	return true
}

// Cancel permanently closes the throttle. Safe to call more than once.
func (t *Throttle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canceled = true
}

// Canceled reports whether the throttle has been torn down.
func (t *Throttle) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_LeadingEdge(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	th := NewThrottle(500 * time.Millisecond)
	th.now = func() time.Time { return now }

	var calls int
	fn := func() { calls++ }

	// First call fires immediately.
	assert.True(t, th.Do(fn))
	assert.Equal(t, 1, calls)

	// Calls inside the window are dropped, not queued.
	now = now.Add(100 * time.Millisecond)
	assert.False(t, th.Do(fn))
	now = now.Add(100 * time.Millisecond)
	assert.False(t, th.Do(fn))
	assert.Equal(t, 1, calls)

	// After the window a new leading-edge call fires.
	now = now.Add(400 * time.Millisecond)
	assert.True(t, th.Do(fn))
	assert.Equal(t, 2, calls)
}

func TestThrottle_WindowBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	th := NewThrottle(500 * time.Millisecond)
	th.now = func() time.Time { return now }

	assert.True(t, th.Do(func() {}))

	// Exactly at the interval is admitted again.
	now = now.Add(500 * time.Millisecond)
	assert.True(t, th.Do(func() {}))
}

func TestThrottle_Cancel(t *testing.T) {
	th := NewThrottle(time.Millisecond)

	var calls int
	assert.True(t, th.Do(func() { calls++ }))

	th.Cancel()
	assert.True(t, th.Canceled())

	time.Sleep(5 * time.Millisecond)
	assert.False(t, th.Do(func() { calls++ }))
	assert.Equal(t, 1, calls)

	// Cancel is safe to call repeatedly.
	th.Cancel()
	assert.True(t, th.Canceled())
}

func TestThrottle_DefaultInterval(t *testing.T) {
	th := NewThrottle(0)
	assert.Equal(t, 500*time.Millisecond, th.interval)
}

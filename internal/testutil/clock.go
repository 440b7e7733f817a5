package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a fake clock for tests: every call to Now advances
// it by a fixed tick, so unit durations are predictable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	tick  time.Duration
	calls int64
}

// NewDeterministicClock creates a clock that advances by tick per reading.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock(tick time.Duration) *DeterministicClock {
	return &DeterministicClock{tick: tick}
}

// Now returns the current reading and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := Epoch.Add(time.Duration(c.calls) * c.tick)
	c.calls++
	return now
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock to Epoch.
//
// Used for test reuse. After Reset(), the next call to Now() returns Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}

package testutil

import (
	"sync"
	"time"
)

// Epoch is the default instant for FixedClock: 2024-03-01 10:00:00 UTC.
var Epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// FixedClock is a wall clock that only moves when told to.
//
// Order timestamps taken from a FixedClock are reproducible, which keeps
// golden traces byte-identical between runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock reading t. A zero t reads Epoch.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = Epoch
	}
	return &FixedClock{now: t}
}

// Now returns the current reading. Matches the func() time.Time shape
// accepted by checkout.WithClock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

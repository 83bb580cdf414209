package testfixtures

import (
	"sync"
	"time"
)

// Clock is a hand-driven time source for planner tests. Services take an
// injected now func; tests hand them clock.NowFunc() and steer time
// explicitly instead of sleeping.
type Clock struct {
	mu      sync.Mutex
	instant time.Time
}

// NewClock returns a clock frozen at start. The zero value anchors the clock
// to ReferenceTime, the Monday morning shared by all fixtures.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{instant: start}
}

// Now reports the instant the clock is frozen at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instant
}

// NowFunc adapts the clock to the now-func signature the services inject.
// A nil clock degrades to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set freezes the clock at t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.instant = t
	c.mu.Unlock()
}

// Advance moves the frozen instant forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.instant = c.instant.Add(d)
	updated := c.instant
	c.mu.Unlock()
	return updated
}

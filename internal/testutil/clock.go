// Package testutil provides deterministic helpers for tests: a ticking
// clock, a fixed slide-token generator, and a fake summarizer.
package testutil

import (
	"sync"
	"time"
)

// TickClock is a thread-safe deterministic time source for tests.
//
// Each call to Now advances the clock by a fixed step, so a sequence of
// appends gets strictly increasing created_at stamps regardless of wall
// time. The same test run always produces identical timestamps.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type TickClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	tick int
}

// NewTickClock creates a clock starting at base, advancing by step on
// each Now call. The first call returns base+step.
func NewTickClock(base time.Time, step time.Duration) *TickClock {
	return &TickClock{base: base, step: step}
}

// NewDefaultTickClock creates a clock at 2025-01-01T00:00:00Z with a
// one-second step, the convention used across the test suites.
func NewDefaultTickClock() *TickClock {
	return NewTickClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)
}

// Now advances the clock one step and returns the new time.
func (c *TickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.base.Add(time.Duration(c.tick) * c.step)
}

// Current returns the latest returned time without advancing.
func (c *TickClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.tick) * c.step)
}

// Reset rewinds the clock to its base. After Reset, the next Now call
// returns base+step again.
func (c *TickClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = 0
}

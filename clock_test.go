package kd

import (
	"sync"
	"time"
)

// fakeClock is a manually advanced Clock, used throughout the test suite to
// make timer cadence and wait timeouts deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func newFakeClock() *fakeClock { return &fakeClock{} }

func (c *fakeClock) NowNanos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d.Nanoseconds()
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d.Nanoseconds()
	c.mu.Unlock()
}

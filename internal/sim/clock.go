package sim

import (
	"sync/atomic"
	"time"
)

// Clock is the simulated time source. It only advances when the driver
// steps, so a paused or slow simulation never skips spawn gates.
type Clock struct {
	start   time.Time
	elapsed atomic.Int64 // nanoseconds since start
}

// NewClock creates a clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{start: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	return c.start.Add(c.Elapsed())
}

// Elapsed returns the simulated time since start.
func (c *Clock) Elapsed() time.Duration {
	return time.Duration(c.elapsed.Load())
}

// Advance moves the clock forward by d. Negative d is ignored.
func (c *Clock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.elapsed.Add(int64(d))
}

// Start returns the time the simulation started.
func (c *Clock) Start() time.Time {
	return c.start
}

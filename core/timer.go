package core

import (
	"sync/atomic"
	"time"
)

// ManualClock is a clock driven by its owner: targets store the hardware
// microsecond counter into it, tests and the simulator advance it.
type ManualClock struct {
	micros atomic.Int64
	step   atomic.Int64
}

// NewManualClock returns a clock stopped at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current time, then advances it by the auto step if one is set.
func (c *ManualClock) Now() time.Duration {
	step := c.step.Load()
	if step == 0 {
		return time.Duration(c.micros.Load()) * time.Microsecond
	}
	return time.Duration(c.micros.Add(step)-step) * time.Microsecond
}

// SetTime sets the current time in microseconds (hardware integration).
func (c *ManualClock) SetTime(us uint64) {
	c.micros.Store(int64(us))
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.micros.Add(int64(d / time.Microsecond))
}

// SetAutoStep makes every Now call advance the clock by d, so busy-waits
// terminate without a real time source.
func (c *ManualClock) SetAutoStep(d time.Duration) {
	c.step.Store(int64(d / time.Microsecond))
}

// millis converts a loop timestamp to the trace clock.
func millis(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}

// Package sim simulates the HC-SR04 side of the wiring so the pipeline runs
// on a host without hardware.
package sim

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// SkewClock is a clock whose Now can be pushed forward without waiting.
// Timers keep the pace of the underlying clock.
//
// The echo simulator skews the clock by the echo width between the rising
// and falling edges, so the interrupt handler times exact widths no matter
// how the host schedules goroutines.
type SkewClock struct {
	clockwork.Clock
	skew atomic.Int64
}

// NewSkewClock wraps base, nil means the real clock.
func NewSkewClock(base clockwork.Clock) *SkewClock {
	if base == nil {
		base = clockwork.NewRealClock()
	}
	return &SkewClock{Clock: base}
}

// Now implements clockwork.Clock.
func (c *SkewClock) Now() time.Time {
	return c.Clock.Now().Add(c.Offset())
}

// Since implements clockwork.Clock.
func (c *SkewClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Skew moves Now forward by d.
func (c *SkewClock) Skew(d time.Duration) {
	if d > 0 {
		c.skew.Add(int64(d))
	}
}

// Offset returns the accumulated skew.
func (c *SkewClock) Offset() time.Duration {
	return time.Duration(c.skew.Load())
}

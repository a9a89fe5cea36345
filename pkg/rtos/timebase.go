package rtos

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timebase is a free running microsecond counter since boot.
// The counter is 32 bits wide and wraps about every 71 minutes; differences
// of two readings are taken modulo 2^32 so a wrap between them is harmless.
type Timebase struct {
	clock clockwork.Clock
	boot  time.Time
}

// NewTimebase starts a timebase at the current clock time.
func NewTimebase(clock clockwork.Clock) *Timebase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timebase{clock: clock, boot: clock.Now()}
}

// Micros returns microseconds since boot.
func (t *Timebase) Micros() uint32 {
	return uint32(t.clock.Since(t.boot) / time.Microsecond)
}

// Sleep suspends the caller for d or until ctx is done.
func Sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	timer := clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

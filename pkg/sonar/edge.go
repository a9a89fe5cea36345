package sonar

import (
	"sync/atomic"

	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// EdgeTimer measures echo pulses in interrupt context.
//
// A rising edge records the time; a falling edge enqueues the time elapsed
// since the last recorded rise and raises the signal if one is wired. The
// rise time is never cleared, so a repeated falling edge measures from the
// same rise and a falling edge before any rise measures from boot.
type EdgeTimer struct {
	tb     *rtos.Timebase
	pulses *rtos.Queue[PulseDuration]
	signal *rtos.BinarySemaphore

	// only touched by HandleEdge, which the board serializes.
	rise uint32

	pairs atomic.Uint64
}

// NewEdgeTimer creates an EdgeTimer, signal may be nil.
func NewEdgeTimer(tb *rtos.Timebase, pulses *rtos.Queue[PulseDuration], signal *rtos.BinarySemaphore) *EdgeTimer {
	return &EdgeTimer{tb: tb, pulses: pulses, signal: signal}
}

// HandleEdge is the hal.EdgeHandler of the echo pin. It never blocks.
func (t *EdgeTimer) HandleEdge(edge hal.Edge) {
	now := t.tb.Micros()
	if edge == hal.EdgeRising {
		t.rise = now
		return
	}
	t.pairs.Add(1)
	t.pulses.TrySend(PulseDuration(now - t.rise))
	if t.signal != nil {
		t.signal.Give()
	}
}

// Pairs returns how many falling edges were timed.
func (t *EdgeTimer) Pairs() uint64 {
	return t.pairs.Load()
}

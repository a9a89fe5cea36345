package rtos

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// BinarySemaphore is a single slot "event happened" flag.
// It carries no payload; raising it while already raised is a no-op.
type BinarySemaphore struct {
	ch    chan struct{}
	clock clockwork.Clock
}

// NewBinarySemaphore creates a semaphore in the taken (lowered) state.
func NewBinarySemaphore(clock clockwork.Clock) *BinarySemaphore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &BinarySemaphore{ch: make(chan struct{}, 1), clock: clock}
}

// Give raises the semaphore without blocking.
// It returns false if the semaphore was already raised.
func (s *BinarySemaphore) Give() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Raised reports whether the semaphore is currently raised.
func (s *BinarySemaphore) Raised() bool {
	return len(s.ch) > 0
}

// Take blocks until the semaphore is raised, then lowers it.
func (s *BinarySemaphore) Take(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TakeTimeout is Take bounded by d; it returns ErrTimeout on expiry.
func (s *BinarySemaphore) TakeTimeout(ctx context.Context, d time.Duration) error {
	select {
	case <-s.ch:
		return nil
	default:
	}
	timer := s.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.ch:
		return nil
	case <-timer.Chan():
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

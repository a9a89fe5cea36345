// Package rtos provides the inter-task primitives of the ranging pipeline:
// bounded queues with an explicit overflow policy, a binary semaphore and a
// microsecond timebase.
//
// Producer side operations (TrySend, Give) never block and are safe to call
// from interrupt handlers. Consumer side operations block until data arrives,
// the context is done or, for the timed variants, the clock expires.
package rtos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrTimeout indicates a bounded wait expired.
var ErrTimeout = errors.New("timeout")

// OverflowPolicy decides what a full queue does with a new item.
type OverflowPolicy uint8

const (
	// DropNewest rejects the new item and keeps the queued ones.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the head of the queue to make room for the new item.
	DropOldest
)

// String implements fmt.Stringer.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop-newest"
	case DropOldest:
		return "drop-oldest"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParseOverflowPolicy parses the String form of a policy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "drop-newest", "newest":
		return DropNewest, nil
	case "drop-oldest", "oldest":
		return DropOldest, nil
	}
	return DropNewest, fmt.Errorf("unknown overflow policy %q", s)
}

// Set implements flag.Value.
func (p *OverflowPolicy) Set(s string) error {
	v, err := ParseOverflowPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Queue is a fixed capacity FIFO.
type Queue[T any] struct {
	ch      chan T
	policy  OverflowPolicy
	clock   clockwork.Clock
	dropped atomic.Uint64

	// evict serializes DropOldest producers so an eviction is always
	// followed by the matching insert.
	evict sync.Mutex
}

// NewQueue creates a queue holding at most capacity items.
func NewQueue[T any](capacity int, policy OverflowPolicy, clock clockwork.Clock) *Queue[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("rtos: invalid queue capacity %d", capacity))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Queue[T]{
		ch:     make(chan T, capacity),
		policy: policy,
		clock:  clock,
	}
}

// TrySend enqueues v without blocking and reports whether v was stored.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
	}
	if q.policy != DropOldest {
		q.dropped.Add(1)
		return false
	}

	q.evict.Lock()
	defer q.evict.Unlock()
	for {
		select {
		case q.ch <- v:
			return true
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// TryRecv dequeues one item without blocking.
func (q *Queue[T]) TryRecv() (v T, ok bool) {
	select {
	case v = <-q.ch:
		return v, true
	default:
		return v, false
	}
}

// Recv blocks until an item is available or ctx is done.
func (q *Queue[T]) Recv(ctx context.Context) (v T, err error) {
	select {
	case v = <-q.ch:
		return v, nil
	case <-ctx.Done():
		return v, ctx.Err()
	}
}

// RecvTimeout blocks for at most d and returns ErrTimeout if nothing arrived.
func (q *Queue[T]) RecvTimeout(ctx context.Context, d time.Duration) (v T, err error) {
	if v, ok := q.TryRecv(); ok {
		return v, nil
	}
	timer := q.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case v = <-q.ch:
		return v, nil
	case <-timer.Chan():
		return v, ErrTimeout
	case <-ctx.Done():
		return v, ctx.Err()
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Policy returns the overflow policy.
func (q *Queue[T]) Policy() OverflowPolicy {
	return q.policy
}

// Dropped returns how many items were lost to overflow.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

package rtos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDropNewest(t *testing.T) {
	q := NewQueue[uint32](32, DropNewest, clockwork.NewFakeClock())
	for i := uint32(0); i < 32; i++ {
		require.True(t, q.TrySend(i), "item %d", i)
	}
	assert.False(t, q.TrySend(32), "33rd item must be rejected")
	assert.Equal(t, 32, q.Len())
	assert.EqualValues(t, 1, q.Dropped())

	for i := uint32(0); i < 32; i++ {
		v, ok := q.TryRecv()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.TryRecv()
	assert.False(t, ok)
}

func TestQueueDropOldest(t *testing.T) {
	q := NewQueue[int](4, DropOldest, clockwork.NewFakeClock())
	for i := 0; i < 6; i++ {
		require.True(t, q.TrySend(i))
	}
	assert.EqualValues(t, 2, q.Dropped())
	var got []int
	for q.Len() > 0 {
		v, _ := q.TryRecv()
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4, 5}, got)
}

func TestQueueTrySendNeverBlocks(t *testing.T) {
	q := NewQueue[int](1, DropNewest, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			q.TrySend(i)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TrySend blocked on a full queue")
	}
	assert.EqualValues(t, 999, q.Dropped())
}

func TestQueueRecvCanceled(t *testing.T) {
	q := NewQueue[int](1, DropNewest, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Recv(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestQueueRecvTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue[float64](2, DropNewest, clock)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.RecvTimeout(context.Background(), 100*time.Millisecond)
		errCh <- err
	}()
	clock.BlockUntil(1)
	clock.Advance(99 * time.Millisecond)
	select {
	case err := <-errCh:
		t.Fatalf("returned early: %v", err)
	default:
	}
	clock.Advance(time.Millisecond)
	assert.Equal(t, ErrTimeout, <-errCh)
}

func TestQueueRecvTimeoutDelivers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue[float64](2, DropNewest, clock)

	type result struct {
		v   float64
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		v, err := q.RecvTimeout(context.Background(), 100*time.Millisecond)
		resCh <- result{v, err}
	}()
	clock.BlockUntil(1)
	require.True(t, q.TrySend(10.19))
	res := <-resCh
	require.NoError(t, res.err)
	assert.Equal(t, 10.19, res.v)

	require.True(t, q.TrySend(4))
	v, err := q.RecvTimeout(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProd = 4, 1000
	q := NewQueue[int](producers*perProd, DropNewest, nil)
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				q.TrySend(p*perProd + i)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for q.Len() > 0 {
		v, _ := q.TryRecv()
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, producers*perProd)
	assert.Zero(t, q.Dropped())
}

func TestParseOverflowPolicy(t *testing.T) {
	testCases := []struct {
		in     string
		expect OverflowPolicy
		err    bool
	}{
		{in: "drop-newest", expect: DropNewest},
		{in: "newest", expect: DropNewest},
		{in: "drop-oldest", expect: DropOldest},
		{in: "oldest", expect: DropOldest},
		{in: "block", err: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			p, err := ParseOverflowPolicy(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, p)
		})
	}
	assert.Equal(t, "drop-oldest", DropOldest.String())

	var p OverflowPolicy
	require.NoError(t, p.Set("oldest"))
	assert.Equal(t, DropOldest, p)
	assert.Error(t, p.Set("lifo"))
	assert.Equal(t, DropOldest, p)
}

func TestNewQueueInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { NewQueue[int](0, DropNewest, nil) })
}

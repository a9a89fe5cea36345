package sonar

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

type edgeFixture struct {
	clock  clockwork.FakeClock
	pulses *rtos.Queue[PulseDuration]
	signal *rtos.BinarySemaphore
	timer  *EdgeTimer
}

func newEdgeFixture(capacity int) *edgeFixture {
	f := &edgeFixture{clock: clockwork.NewFakeClock()}
	f.pulses = rtos.NewQueue[PulseDuration](capacity, rtos.DropNewest, f.clock)
	f.signal = rtos.NewBinarySemaphore(f.clock)
	f.timer = NewEdgeTimer(rtos.NewTimebase(f.clock), f.pulses, f.signal)
	return f
}

func (f *edgeFixture) at(d time.Duration, edge hal.Edge) {
	f.clock.Advance(d)
	f.timer.HandleEdge(edge)
}

func (f *edgeFixture) drain() []PulseDuration {
	var out []PulseDuration
	for {
		v, ok := f.pulses.TryRecv()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestEdgeTimerPair(t *testing.T) {
	f := newEdgeFixture(32)
	f.at(100*time.Microsecond, hal.EdgeRising)
	assert.Zero(t, f.pulses.Len(), "rising edge only records")
	assert.False(t, f.signal.Raised())

	f.at(594800*time.Nanosecond, hal.EdgeFalling)
	assert.Equal(t, []PulseDuration{594}, f.drain())
	assert.True(t, f.signal.Raised())
	assert.EqualValues(t, 1, f.timer.Pairs())
}

func TestEdgeTimerAnomalies(t *testing.T) {
	t.Run("double rise", func(t *testing.T) {
		f := newEdgeFixture(32)
		f.at(100*time.Microsecond, hal.EdgeRising)
		f.at(50*time.Microsecond, hal.EdgeRising)
		f.at(200*time.Microsecond, hal.EdgeFalling)
		assert.Equal(t, []PulseDuration{200}, f.drain(), "last rise wins")
	})
	t.Run("double fall", func(t *testing.T) {
		f := newEdgeFixture(32)
		f.at(100*time.Microsecond, hal.EdgeRising)
		f.at(300*time.Microsecond, hal.EdgeFalling)
		f.at(100*time.Microsecond, hal.EdgeFalling)
		assert.Equal(t, []PulseDuration{300, 400}, f.drain(), "both measure from the same rise")
		assert.EqualValues(t, 2, f.timer.Pairs())
	})
	t.Run("fall before rise", func(t *testing.T) {
		f := newEdgeFixture(32)
		f.at(700*time.Microsecond, hal.EdgeFalling)
		assert.Equal(t, []PulseDuration{700}, f.drain(), "measured from boot")
	})
}

func TestEdgeTimerCounterWrap(t *testing.T) {
	f := newEdgeFixture(32)
	f.at(time.Duration(1<<32-20)*time.Microsecond, hal.EdgeRising)
	f.at(600*time.Microsecond, hal.EdgeFalling)
	assert.Equal(t, []PulseDuration{600}, f.drain())
}

func TestEdgeTimerQueueFull(t *testing.T) {
	f := newEdgeFixture(32)
	for i := 0; i < 33; i++ {
		f.at(time.Millisecond, hal.EdgeRising)
		f.at(time.Duration(i+1)*time.Microsecond, hal.EdgeFalling)
	}
	pulses := f.drain()
	require.Len(t, pulses, 32)
	assert.EqualValues(t, 1, pulses[0])
	assert.EqualValues(t, 32, pulses[31], "the 33rd pulse is dropped")
	assert.EqualValues(t, 1, f.pulses.Dropped())
	assert.EqualValues(t, 33, f.timer.Pairs())
}

func TestEdgeTimerSignalIsBinary(t *testing.T) {
	f := newEdgeFixture(32)
	for i := 0; i < 3; i++ {
		f.at(time.Millisecond, hal.EdgeRising)
		f.at(time.Millisecond, hal.EdgeFalling)
	}
	assert.Equal(t, 3, f.pulses.Len())
	assert.True(t, f.signal.Raised())
	assert.False(t, f.signal.Give(), "raising twice is a no-op")
}

func TestEdgeTimerWithoutSignal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pulses := rtos.NewQueue[PulseDuration](4, rtos.DropNewest, clock)
	timer := NewEdgeTimer(rtos.NewTimebase(clock), pulses, nil)
	timer.HandleEdge(hal.EdgeRising)
	clock.Advance(time.Millisecond)
	timer.HandleEdge(hal.EdgeFalling)
	v, ok := pulses.TryRecv()
	require.True(t, ok)
	assert.EqualValues(t, 1000, v)
}

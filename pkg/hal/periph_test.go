//go:build linux

package hal

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

const (
	defaultWait = time.Second
	defaultTick = time.Millisecond
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(ev string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// latePin is a pin whose level is always back low by the time it is read,
// like a short echo that ended before the watcher woke up.
type latePin struct {
	*gpiotest.Pin
	log *eventLog
}

func (p *latePin) In(pull gpio.Pull, edge gpio.Edge) error {
	err := p.Pin.In(pull, edge)
	p.log.add("arm:" + edge.String())
	return err
}

func (p *latePin) Read() gpio.Level {
	return gpio.Low
}

func newLatePin() (*PeriphPin, *latePin, *eventLog) {
	log := &eventLog{}
	fake := &latePin{
		Pin: &gpiotest.Pin{
			N:         "GPIO3",
			Num:       3,
			Clock:     clockwork.NewRealClock(),
			EdgesChan: make(chan gpio.Level),
		},
		log: log,
	}
	board := &PeriphBoard{pins: make(map[int]*PeriphPin)}
	return &PeriphPin{board: board, io: fake}, fake, log
}

func TestPeriphPinEdges(t *testing.T) {
	testCases := []struct {
		name  string
		edges Edge
		want  []string
	}{
		{
			name:  "both",
			edges: EdgeBoth,
			want: []string{
				"arm:NoEdge", "arm:RisingEdge",
				"rising", "arm:FallingEdge",
				"falling", "arm:RisingEdge",
			},
		},
		{
			name:  "rising",
			edges: EdgeRising,
			want:  []string{"arm:NoEdge", "arm:RisingEdge", "rising", "rising"},
		},
		{
			name:  "falling",
			edges: EdgeFalling,
			want:  []string{"arm:NoEdge", "arm:FallingEdge", "falling", "falling"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pin, fake, log := newLatePin()
			require.NoError(t, pin.ConfigureInput(PullNone))
			require.NoError(t, pin.SetInterrupt(tc.edges, func(e Edge) {
				log.add(e.String())
			}))
			defer pin.SetInterrupt(tc.edges, nil)

			// each edge is fed once the previous one is handled and the pin re-armed.
			n := 2
			for _, level := range []gpio.Level{gpio.High, gpio.Low} {
				fake.EdgesChan <- level
				n++
				if tc.edges == EdgeBoth {
					n++
				}
				require.Eventually(t, func() bool { return len(log.get()) == n }, defaultWait, defaultTick)
			}
			assert.Equal(t, tc.want, log.get())
		})
	}
}

func TestPeriphPinInterruptNeedsInput(t *testing.T) {
	pin, _, _ := newLatePin()
	assert.ErrorIs(t, pin.SetInterrupt(EdgeBoth, func(Edge) {}), ErrNotConfigured)
	require.NoError(t, pin.ConfigureInput(PullNone))
	assert.Error(t, pin.SetInterrupt(Edge(4), func(Edge) {}))
	assert.NoError(t, pin.SetInterrupt(EdgeBoth, nil))
}

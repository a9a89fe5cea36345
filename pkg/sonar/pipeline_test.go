package sonar

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/display"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

func TestPipeline(t *testing.T) {
	for _, coupling := range []Coupling{CouplingPaired, CouplingSemaphore} {
		t.Run(coupling.String(), func(t *testing.T) {
			clock := clockwork.NewFakeClock()
			board := hal.NewVirtualBoard()
			canvas := display.NewCanvas(display.NewTerminalPanel(nil))
			out := &syncBuffer{}
			cfg := NewConfig()
			cfg.Coupling = coupling
			p, err := NewPipeline(cfg, board, canvas, clock, console.NewWriter(out))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- p.Run(ctx) }()

			echo := board.Pin(cfg.EchoPin)
			require.Eventually(t, func() bool { return echo.Edges() == hal.EdgeBoth }, defaultWait, defaultTick)
			clock.BlockUntil(2)

			clock.Advance(100 * time.Microsecond)
			echo.Drive(true)
			clock.Advance(594800 * time.Nanosecond)
			echo.Drive(false)

			require.Eventually(t, func() bool { return p.Presenter.Renders() == 1 }, defaultWait, defaultTick)
			stats := p.Stats()
			assert.EqualValues(t, 1, stats.Pairs)
			assert.EqualValues(t, 1, stats.Conversions)
			assert.Equal(t, "Dist: 10.19 cm", stats.LastText)
			assert.Zero(t, stats.PulsesQueued)
			assert.Zero(t, stats.PulsesDropped)
			assert.Equal(t, 6, barPixels(canvas))

			echo.Drive(true)
			clock.Advance(time.Duration(PulseFor(450)) * time.Microsecond)
			echo.Drive(false)
			require.Eventually(t, func() bool { return p.Presenter.Renders() == 2 }, defaultWait, defaultTick)
			assert.Equal(t, ErrorText, p.Stats().LastText)
			assert.Zero(t, barPixels(canvas))
			require.Eventually(t, func() bool { return p.Stats().Triggers == 1 }, defaultWait, defaultTick, "trigger pulse ends after 10ms")

			cancel()
			select {
			case err := <-errCh:
				assert.NoError(t, err)
			case <-time.After(defaultWait):
				t.Fatal("pipeline did not stop")
			}
			for _, banner := range []string{"trigger task", "echo task", "initializing display driver", "Dist: 10.19 cm"} {
				assert.Contains(t, out.String(), banner)
			}
		})
	}
}

func TestPipelineWiring(t *testing.T) {
	board := hal.NewVirtualBoard()
	cfg := NewConfig()
	p, err := NewPipeline(cfg, board, display.NewCanvas(nil), nil, console.Discard)
	require.NoError(t, err)
	assert.Nil(t, p.EdgeTimer.signal, "paired coupling leaves the signal unused")
	assert.Equal(t, 32, p.Pulses.Cap())
	assert.Equal(t, 32, p.Distances.Cap())
	assert.Equal(t, "drop-newest", p.Stats().Overflow)

	cfg.Coupling = CouplingSemaphore
	cfg.Overflow = rtos.DropOldest
	p, err = NewPipeline(cfg, board, display.NewCanvas(nil), nil, console.Discard)
	require.NoError(t, err)
	assert.Same(t, p.Signal, p.EdgeTimer.signal)
	assert.Equal(t, "drop-oldest", p.Stats().Overflow)

	cfg.EchoPin = cfg.TriggerPin
	_, err = NewPipeline(cfg, board, display.NewCanvas(nil), nil, console.Discard)
	assert.Error(t, err)

	cfg = NewConfig()
	cfg.LEDPins = PinList{-5}
	_, err = NewPipeline(cfg, board, display.NewCanvas(nil), nil, console.Discard)
	assert.ErrorIs(t, err, hal.ErrNoPin)
}

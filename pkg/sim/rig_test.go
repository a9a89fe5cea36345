package sim

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/display"
	"github.com/robotalks/sonar.go/pkg/sonar"
)

func barLength(frame []byte) int {
	n := 0
	for x := 0; x < display.Width; x++ {
		if display.PixelAt(frame, x, sonar.BarRow) {
			n++
		}
	}
	return n
}

func TestRig(t *testing.T) {
	clock := clockwork.NewFakeClock()
	mirror := display.NewTerminalPanel(nil)
	rig, err := NewRig(sonar.NewConfig(), clock, console.Discard, mirror)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- rig.Run(ctx) }()

	// trigger pulse and presenter wait
	clock.BlockUntil(2)
	clock.Advance(10 * time.Millisecond)
	require.Eventually(t, func() bool { return rig.Pipeline.Presenter.Renders() == 1 }, defaultWait, defaultTick)
	assert.Equal(t, "Dist: 10.19 cm", rig.Pipeline.Presenter.LastText())
	assert.Equal(t, 6, barLength(rig.Panel.Frame()))
	assert.Equal(t, rig.Panel.Frame(), mirror.Frame())
	assert.EqualValues(t, 1, rig.Echo.Echoes())

	require.NoError(t, rig.Echo.SetTarget(450))
	clock.BlockUntil(2)
	clock.Advance(time.Second)
	clock.BlockUntil(2)
	clock.Advance(10 * time.Millisecond)
	require.Eventually(t, func() bool { return rig.Pipeline.Presenter.Renders() == 2 }, defaultWait, defaultTick)
	assert.Equal(t, sonar.ErrorText, rig.Pipeline.Presenter.LastText())
	assert.Zero(t, barLength(rig.Panel.Frame()))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(defaultWait):
		t.Fatal("rig did not stop")
	}
}

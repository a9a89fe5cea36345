package sonar

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// DistanceConverter owns the echo pin: it hooks the EdgeTimer to the pin's
// interrupt, then converts every timed pulse to a distance.
type DistanceConverter struct {
	Echo      hal.InputPin
	Timer     *EdgeTimer
	Pulses    *rtos.Queue[PulseDuration]
	Distances *rtos.Queue[Distance]
	Console   console.Console

	converted atomic.Uint64
}

// Name implements framework.Named.
func (c *DistanceConverter) Name() string {
	return "echo"
}

// Converted returns the number of pulses converted.
func (c *DistanceConverter) Converted() uint64 {
	return c.converted.Load()
}

// Run implements framework.Runnable.
func (c *DistanceConverter) Run(ctx context.Context) error {
	c.Console.Printf("echo task")
	if err := c.Echo.ConfigureInput(hal.PullNone); err != nil {
		return fmt.Errorf("configure echo pin: %w", err)
	}
	if err := c.Echo.SetInterrupt(hal.EdgeBoth, c.Timer.HandleEdge); err != nil {
		return fmt.Errorf("enable echo interrupt: %w", err)
	}
	defer c.Echo.SetInterrupt(hal.EdgeBoth, nil)

	for {
		pulse, err := c.Pulses.Recv(ctx)
		if err != nil {
			return err
		}
		d := Convert(pulse)
		c.Console.Printf("distance: %f cm", float64(d))
		if !c.Distances.TrySend(d) {
			glog.V(2).Infof("distance queue full, %v dropped", d)
		}
		c.converted.Add(1)
	}
}

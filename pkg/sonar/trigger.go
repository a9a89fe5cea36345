package sonar

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// TriggerEmitter starts a measurement every Period by holding the trigger
// pin high for PulseWidth.
type TriggerEmitter struct {
	Pin        hal.OutputPin
	Clock      clockwork.Clock
	PulseWidth time.Duration
	Period     time.Duration
	Console    console.Console

	pulses atomic.Uint64
}

// Name implements framework.Named.
func (e *TriggerEmitter) Name() string {
	return "trigger"
}

// Pulses returns the number of completed trigger pulses.
func (e *TriggerEmitter) Pulses() uint64 {
	return e.pulses.Load()
}

// Run implements framework.Runnable.
func (e *TriggerEmitter) Run(ctx context.Context) error {
	if err := e.Pin.ConfigureOutput(); err != nil {
		return fmt.Errorf("configure trigger pin: %w", err)
	}
	e.Console.Printf("trigger task")
	for {
		e.set(true)
		if err := rtos.Sleep(ctx, e.Clock, e.PulseWidth); err != nil {
			e.set(false)
			return err
		}
		e.set(false)
		e.pulses.Add(1)
		if err := rtos.Sleep(ctx, e.Clock, e.Period); err != nil {
			return err
		}
	}
}

func (e *TriggerEmitter) set(high bool) {
	if err := e.Pin.Set(high); err != nil {
		glog.Errorf("trigger %s: %v", e.Pin.Name(), err)
	}
}

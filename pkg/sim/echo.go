package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/sonar"
)

// Mode selects how the simulated sensor answers a trigger.
type Mode uint8

const (
	// ModeEcho answers with a pulse matching the target distance.
	ModeEcho Mode = iota
	// ModeSilent never raises the echo pin.
	ModeSilent
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeEcho:
		return "echo"
	case ModeSilent:
		return "silent"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// DefaultTarget is the initial simulated distance.
const DefaultTarget sonar.Distance = 10.19

// Echo is a simulated HC-SR04. Each falling edge on the trigger pin is
// answered with one echo pulse on the echo pin.
type Echo struct {
	Trigger *hal.VirtualPin
	Pin     *hal.VirtualPin
	Clock   *SkewClock

	mu     sync.Mutex
	target sonar.Distance
	mode   Mode
	glitch hal.Edge

	requests chan struct{}
	triggers atomic.Uint64
	echoes   atomic.Uint64
	missed   atomic.Uint64
}

// NewEcho wires a simulated sensor to the trigger and echo pins.
func NewEcho(trigger, echo *hal.VirtualPin, clock *SkewClock) *Echo {
	e := &Echo{
		Trigger:  trigger,
		Pin:      echo,
		Clock:    clock,
		target:   DefaultTarget,
		requests: make(chan struct{}, 1),
	}
	trigger.Watch(func(high bool) {
		if high {
			return
		}
		select {
		case e.requests <- struct{}{}:
		default:
			e.missed.Add(1)
		}
	})
	return e
}

// Name implements framework.Named.
func (e *Echo) Name() string {
	return "echo-sim"
}

// SetTarget sets the simulated distance.
func (e *Echo) SetTarget(d sonar.Distance) error {
	if d < 0 {
		return fmt.Errorf("invalid distance %v", d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = d
	return nil
}

// Target returns the simulated distance.
func (e *Echo) Target() sonar.Distance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// SetMode changes the answering mode.
func (e *Echo) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
}

// Mode returns the answering mode.
func (e *Echo) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Glitch makes the next echo carry a spurious edge: EdgeRising adds a second
// rising edge halfway through the pulse, EdgeFalling adds a second falling
// edge one pulse width after the end.
func (e *Echo) Glitch(edge hal.Edge) error {
	if edge != hal.EdgeRising && edge != hal.EdgeFalling {
		return fmt.Errorf("invalid glitch edge %v", edge)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.glitch = edge
	return nil
}

// Triggers returns how many triggers were handled.
func (e *Echo) Triggers() uint64 {
	return e.triggers.Load()
}

// Echoes returns how many echo pulses were produced.
func (e *Echo) Echoes() uint64 {
	return e.echoes.Load()
}

// Missed returns how many triggers arrived while the previous one was
// still pending.
func (e *Echo) Missed() uint64 {
	return e.missed.Load()
}

// Run implements framework.Runnable.
func (e *Echo) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.requests:
			e.respond()
		}
	}
}

func (e *Echo) respond() {
	e.mu.Lock()
	mode, target, glitch := e.mode, e.target, e.glitch
	if mode == ModeEcho {
		e.glitch = 0
	}
	e.mu.Unlock()

	defer e.triggers.Add(1)
	if mode == ModeSilent {
		glog.V(2).Info("echo-sim: trigger ignored")
		return
	}
	width := time.Duration(sonar.PulseFor(target)) * time.Microsecond
	glog.V(2).Infof("echo-sim: %v -> %v pulse", target, width)

	e.Pin.Drive(true)
	if glitch == hal.EdgeRising {
		e.Clock.Skew(width / 2)
		e.Pin.Inject(hal.EdgeRising)
		e.Clock.Skew(width - width/2)
	} else {
		e.Clock.Skew(width)
	}
	e.Pin.Drive(false)
	if glitch == hal.EdgeFalling {
		e.Clock.Skew(width)
		e.Pin.Inject(hal.EdgeFalling)
	}
	e.echoes.Add(1)
}

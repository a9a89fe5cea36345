package sonar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// Coupling selects how the presenter learns about new measurements.
type Coupling uint8

const (
	// CouplingPaired waits on the distance queue alone.
	CouplingPaired Coupling = iota
	// CouplingSemaphore waits for the ready signal, then for the distance.
	CouplingSemaphore
)

// String implements fmt.Stringer.
func (c Coupling) String() string {
	switch c {
	case CouplingPaired:
		return "paired"
	case CouplingSemaphore:
		return "semaphore"
	}
	return fmt.Sprintf("coupling(%d)", uint8(c))
}

// ParseCoupling parses the String form of a coupling.
func ParseCoupling(s string) (Coupling, error) {
	switch s {
	case "paired", "queue":
		return CouplingPaired, nil
	case "semaphore", "legacy":
		return CouplingSemaphore, nil
	}
	return CouplingPaired, fmt.Errorf("unknown coupling %q", s)
}

// Set implements flag.Value.
func (c *Coupling) Set(s string) error {
	v, err := ParseCoupling(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// PresenterState is a state of the DisplayPresenter.
type PresenterState uint8

const (
	StateInit PresenterState = iota
	StateWaitSignal
	StateWaitData
	StateRender
)

// String implements fmt.Stringer.
func (s PresenterState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateWaitSignal:
		return "wait-signal"
	case StateWaitData:
		return "wait-data"
	case StateRender:
		return "render"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// DisplayPresenter shows the latest distance.
//
// Paired:    init -> wait-data -> render -> wait-data ...
// Semaphore: init -> wait-signal -> wait-data -> render -> wait-signal ...
//
// Every wait is bounded by Timeout; an expired wait goes back to the first
// wait state without drawing.
type DisplayPresenter struct {
	Surface   Surface
	Aux       *AuxPins
	Signal    *rtos.BinarySemaphore
	Distances *rtos.Queue[Distance]
	Coupling  Coupling
	Timeout   time.Duration
	Console   console.Console

	state   atomic.Uint32
	pending Distance

	renders        atomic.Uint64
	signalTimeouts atomic.Uint64
	dataTimeouts   atomic.Uint64

	lastLock sync.Mutex
	last     string
}

// Name implements framework.Named.
func (p *DisplayPresenter) Name() string {
	return "display"
}

// State returns the current state. It is safe to call while Run is active.
func (p *DisplayPresenter) State() PresenterState {
	return PresenterState(p.state.Load())
}

func (p *DisplayPresenter) setState(s PresenterState) {
	p.state.Store(uint32(s))
}

// Renders returns how many frames were shown.
func (p *DisplayPresenter) Renders() uint64 {
	return p.renders.Load()
}

// Timeouts returns the expired signal and data waits.
func (p *DisplayPresenter) Timeouts() (signal, data uint64) {
	return p.signalTimeouts.Load(), p.dataTimeouts.Load()
}

// LastText returns the text of the last frame.
func (p *DisplayPresenter) LastText() string {
	p.lastLock.Lock()
	defer p.lastLock.Unlock()
	return p.last
}

// Run implements framework.Runnable.
func (p *DisplayPresenter) Run(ctx context.Context) error {
	for {
		if err := p.Step(ctx); err != nil {
			return err
		}
	}
}

// Step performs the action of the current state and moves to the next one.
// It returns only initialization failures and context errors.
func (p *DisplayPresenter) Step(ctx context.Context) error {
	state := p.State()
	switch state {
	case StateInit:
		if err := p.init(); err != nil {
			return err
		}
		p.setState(p.idleState())
	case StateWaitSignal:
		err := p.Signal.TakeTimeout(ctx, p.Timeout)
		switch {
		case err == nil:
			p.setState(StateWaitData)
		case errors.Is(err, rtos.ErrTimeout):
			p.signalTimeouts.Add(1)
		default:
			return err
		}
	case StateWaitData:
		d, err := p.Distances.RecvTimeout(ctx, p.Timeout)
		switch {
		case err == nil:
			p.pending = d
			p.setState(StateRender)
		case errors.Is(err, rtos.ErrTimeout):
			p.dataTimeouts.Add(1)
			p.setState(p.idleState())
		default:
			return err
		}
	case StateRender:
		p.render(p.pending)
		p.setState(p.idleState())
	default:
		return fmt.Errorf("invalid presenter state %v", state)
	}
	return nil
}

func (p *DisplayPresenter) idleState() PresenterState {
	if p.Coupling == CouplingSemaphore {
		return StateWaitSignal
	}
	return StateWaitData
}

func (p *DisplayPresenter) init() error {
	p.Console.Printf("initializing display driver")
	if err := p.Surface.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	p.Console.Printf("initializing graphics")
	p.Surface.Clear()
	p.Console.Printf("initializing buttons and LEDs")
	if p.Aux != nil {
		if err := p.Aux.Init(); err != nil {
			return fmt.Errorf("buttons and LEDs init: %w", err)
		}
	}
	glog.Infof("display ready, %v coupling, wait timeout %v", p.Coupling, p.Timeout)
	return nil
}

func (p *DisplayPresenter) render(d Distance) {
	text, err := Render(p.Surface, d)
	if err != nil {
		glog.Errorf("display show: %v", err)
	}
	if d <= MaxRange {
		p.Console.Printf("%s", text)
	}
	p.renders.Add(1)
	p.lastLock.Lock()
	p.last = text
	p.lastLock.Unlock()
}

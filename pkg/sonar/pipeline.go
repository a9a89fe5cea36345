package sonar

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/robotalks/sonar.go/pkg/console"
	fx "github.com/robotalks/sonar.go/pkg/framework"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// Pipeline wires the ranging tasks together.
type Pipeline struct {
	Config    *Config
	Timebase  *rtos.Timebase
	Pulses    *rtos.Queue[PulseDuration]
	Distances *rtos.Queue[Distance]
	Signal    *rtos.BinarySemaphore

	EdgeTimer *EdgeTimer
	Trigger   *TriggerEmitter
	Converter *DistanceConverter
	Presenter *DisplayPresenter
}

// NewPipeline creates all queues, signals and tasks. Nothing touches the
// hardware until Run.
func NewPipeline(cfg *Config, board hal.Board, surface Surface, clock clockwork.Clock, con console.Console) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if con == nil {
		con = console.Glog()
	}
	trigger, err := board.OutputPin(cfg.TriggerPin)
	if err != nil {
		return nil, fmt.Errorf("trigger pin: %w", err)
	}
	echo, err := board.InputPin(cfg.EchoPin)
	if err != nil {
		return nil, fmt.Errorf("echo pin: %w", err)
	}
	aux, err := NewAuxPins(board, cfg.ButtonPins, cfg.LEDPins)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Config:    cfg,
		Timebase:  rtos.NewTimebase(clock),
		Pulses:    rtos.NewQueue[PulseDuration](cfg.QueueCapacity, cfg.Overflow, clock),
		Distances: rtos.NewQueue[Distance](cfg.QueueCapacity, cfg.Overflow, clock),
		Signal:    rtos.NewBinarySemaphore(clock),
	}
	var signal *rtos.BinarySemaphore
	if cfg.Coupling == CouplingSemaphore {
		signal = p.Signal
	}
	p.EdgeTimer = NewEdgeTimer(p.Timebase, p.Pulses, signal)
	p.Trigger = &TriggerEmitter{
		Pin:        trigger,
		Clock:      clock,
		PulseWidth: cfg.PulseWidth,
		Period:     cfg.Period,
		Console:    con,
	}
	p.Converter = &DistanceConverter{
		Echo:      echo,
		Timer:     p.EdgeTimer,
		Pulses:    p.Pulses,
		Distances: p.Distances,
		Console:   con,
	}
	p.Presenter = &DisplayPresenter{
		Surface:   surface,
		Aux:       aux,
		Signal:    p.Signal,
		Distances: p.Distances,
		Coupling:  cfg.Coupling,
		Timeout:   cfg.WaitTimeout,
		Console:   con,
	}
	return p, nil
}

// AddToScheduler implements framework.SchedulerAdder. All tasks share the
// same priority.
func (p *Pipeline) AddToScheduler(s *fx.Scheduler) {
	s.AddTask(p.Trigger.Name(), fx.PrLvTask, p.Trigger)
	s.AddTask(p.Converter.Name(), fx.PrLvTask, p.Converter)
	s.AddTask(p.Presenter.Name(), fx.PrLvTask, p.Presenter)
}

// Run runs all tasks until ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	return fx.NewScheduler().Add(p).Run(ctx)
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	Triggers         uint64
	Pairs            uint64
	Conversions      uint64
	Renders          uint64
	SignalTimeouts   uint64
	DataTimeouts     uint64
	PulsesQueued     int
	PulsesDropped    uint64
	DistancesQueued  int
	DistancesDropped uint64
	SignalRaised     bool
	LastText         string
	Overflow         string
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	sigTimeouts, dataTimeouts := p.Presenter.Timeouts()
	return Stats{
		Triggers:         p.Trigger.Pulses(),
		Pairs:            p.EdgeTimer.Pairs(),
		Conversions:      p.Converter.Converted(),
		Renders:          p.Presenter.Renders(),
		SignalTimeouts:   sigTimeouts,
		DataTimeouts:     dataTimeouts,
		PulsesQueued:     p.Pulses.Len(),
		PulsesDropped:    p.Pulses.Dropped(),
		DistancesQueued:  p.Distances.Len(),
		DistancesDropped: p.Distances.Dropped(),
		SignalRaised:     p.Signal.Raised(),
		LastText:         p.Presenter.LastText(),
		Overflow:         p.Distances.Policy().String(),
	}
}

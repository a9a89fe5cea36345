package framework

import (
	"context"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Task is a Runnable registered with a Scheduler.
type Task struct {
	Name     string
	Priority int
	Runnable Runnable
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Predefine priority levels, larger value runs first.
const (
	PrLvIdle   int = 0
	PrLvLow    int = 4
	PrLvNormal int = 8
	PrLvHigh   int = 12
	PrLvTop    int = PriorityLevels - 1

	// PrLvTask is the priority used for the sensing tasks.
	PrLvTask = PrLvNormal
)

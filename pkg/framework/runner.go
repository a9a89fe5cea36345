package framework

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// TaskError is the failure of one Runnable.
type TaskError struct {
	Task string
	Err  error
}

// Error implements error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

// Unwrap returns the task's own error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

type exit struct {
	name string
	err  error
}

// Runner runs Runnables in their own goroutines and collects their errors.
// A Runnable stopping because the context is canceled is not an error.
type Runner struct {
	Context context.Context
	Runners []Runnable

	cancel   context.CancelFunc
	exitCh   chan exit
	killCh   chan struct{}
	killOnce sync.Once
	running  sync.WaitGroup
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner whose context is derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{
		exitCh: make(chan exit, 1),
		killCh: make(chan struct{}),
	}
	r.Context, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals stops the runner on CtrlC or SIGTERM; a second signal
// abandons Wait.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.Stop()
		<-sigCh
		glog.Error("stop requested again, force exit")
		r.kill()
	}()
	return r
}

// kill abandons Wait. Runnables still running are left behind.
func (r *Runner) kill() {
	r.killOnce.Do(func() { close(r.killCh) })
}

// Stop cancels the runner context.
func (r *Runner) Stop() {
	r.cancel()
}

// Go spawns Runnables with the runner context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(len(r.Runners))
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		glog.V(4).Infof("start Runner[%s]", name)
		r.running.Add(1)
		go func(runner Runnable, name string) {
			defer r.running.Done()
			err := runner.Run(r.Context)
			glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
			select {
			case r.exitCh <- exit{name: name, err: err}:
			case <-r.killCh:
			}
		}(runner, name)
	}
	return r
}

// Wait waits until all Runnables stop and aggregates their errors.
// The first failure stops the others.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for range r.Runners {
		select {
		case <-r.killCh:
			return errors.New("forced exit")
		case ex := <-r.exitCh:
			if ex.err == nil || errors.Is(ex.err, context.Canceled) {
				continue
			}
			glog.Errorf("task %s failed: %v", ex.name, ex.err)
			errs.Add(&TaskError{Task: ex.name, Err: ex.err})
			r.Stop()
		}
	}
	r.Stop()
	return errs.Aggregate()
}

package framework

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/golang/glog"
)

// Scheduler owns a set of long running tasks and starts them together.
//
// Tasks are started in descending priority order; tasks at the same priority
// keep their registration order. Once started, every task runs in its own
// goroutine and the Go runtime preempts between them.
type Scheduler struct {
	tasks   []Task
	lock    sync.Mutex
	started bool
}

// SchedulerAdder provides specific logic to add tasks to a scheduler.
type SchedulerAdder interface {
	AddToScheduler(*Scheduler)
}

// NewScheduler creates a Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add adds SchedulerAdders.
func (s *Scheduler) Add(adders ...SchedulerAdder) *Scheduler {
	for _, adder := range adders {
		adder.AddToScheduler(s)
	}
	return s
}

// AddTask registers a task, like xTaskCreate before the scheduler starts.
func (s *Scheduler) AddTask(name string, priority int, runnable Runnable) *Scheduler {
	if priority < 0 || priority >= PriorityLevels {
		panic(fmt.Sprintf("task %q: priority %d out of range", name, priority))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		panic(fmt.Sprintf("task %q added after scheduler started", name))
	}
	s.tasks = append(s.tasks, Task{Name: name, Priority: priority, Runnable: runnable})
	return s
}

// Tasks returns the registered tasks in start order.
func (s *Scheduler) Tasks() []Task {
	s.lock.Lock()
	defer s.lock.Unlock()
	tasks := make([]Task, len(s.tasks))
	copy(tasks, s.tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
	return tasks
}

// Run starts all tasks and blocks until all of them stop.
func (s *Scheduler) Run(ctx context.Context) error {
	tasks := s.Tasks()
	s.lock.Lock()
	if s.started {
		s.lock.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.lock.Unlock()

	if len(tasks) == 0 {
		return fmt.Errorf("no tasks to schedule")
	}

	runner := NewRunnerWith(ctx)
	for _, task := range tasks {
		glog.V(2).Infof("schedule task %s (priority %d)", task.Name, task.Priority)
		runner.Go(NamedRun(task.Name, task.Runnable))
	}
	return runner.Wait()
}

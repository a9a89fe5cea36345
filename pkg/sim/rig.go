package sim

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/display"
	fx "github.com/robotalks/sonar.go/pkg/framework"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/sonar"
)

// Rig is a complete simulated ranger: virtual board, simulated sensor,
// the pipeline and a recording panel.
type Rig struct {
	Board    *hal.VirtualBoard
	Clock    *SkewClock
	Panel    *display.TerminalPanel
	Canvas   *display.Canvas
	Pipeline *sonar.Pipeline
	Echo     *Echo
}

// NewRig builds a rig on base (nil for the real clock). Frames are recorded
// by Panel and mirrored to extra panels.
func NewRig(cfg *sonar.Config, base clockwork.Clock, con console.Console, extra ...display.Panel) (*Rig, error) {
	r := &Rig{
		Board: hal.NewVirtualBoard(),
		Clock: NewSkewClock(base),
		Panel: display.NewTerminalPanel(nil),
	}
	r.Canvas = display.NewCanvas(display.Panels(append([]display.Panel{r.Panel}, extra...)...))
	p, err := sonar.NewPipeline(cfg, r.Board, r.Canvas, r.Clock, con)
	if err != nil {
		return nil, err
	}
	r.Pipeline = p
	r.Echo = NewEcho(r.Board.Pin(cfg.TriggerPin), r.Board.Pin(cfg.EchoPin), r.Clock)
	return r, nil
}

// AddToScheduler implements framework.SchedulerAdder.
func (r *Rig) AddToScheduler(s *fx.Scheduler) {
	r.Pipeline.AddToScheduler(s)
	s.AddTask(r.Echo.Name(), fx.PrLvHigh, r.Echo)
}

// Run runs the sensor and the pipeline until ctx is done.
func (r *Rig) Run(ctx context.Context) error {
	return fx.NewScheduler().Add(r).Run(ctx)
}

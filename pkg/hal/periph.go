//go:build linux

package hal

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const periphEdgePoll = 100 * time.Millisecond

// PeriphBoard exposes the host GPIO through periph.io.
//
// Edge handlers run on a watcher goroutine as soon as the kernel wakes it, so
// a timestamp taken in the handler carries that pin's wake-up latency, which
// differs from edge to edge. A pin watching both edges is armed for one
// direction at a time; an edge arriving before the watcher re-arms is missed
// and the next pulse is timed long.
type PeriphBoard struct {
	mu   sync.Mutex
	pins map[int]*PeriphPin
	isr  sync.Mutex
}

// NewPeriphBoard initializes the periph.io host drivers.
func NewPeriphBoard() (*PeriphBoard, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	for _, f := range state.Failed {
		glog.V(2).Infof("periph driver %s failed: %v", f.D, f.Err)
	}
	return &PeriphBoard{pins: make(map[int]*PeriphPin)}, nil
}

func (b *PeriphBoard) pin(id int) (*PeriphPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pins[id]; ok {
		return p, nil
	}
	name := fmt.Sprintf("GPIO%d", id)
	io := gpioreg.ByName(name)
	if io == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPin, name)
	}
	p := &PeriphPin{board: b, io: io}
	b.pins[id] = p
	return p, nil
}

// OutputPin implements Board.
func (b *PeriphBoard) OutputPin(id int) (OutputPin, error) {
	return b.pin(id)
}

// InputPin implements Board.
func (b *PeriphBoard) InputPin(id int) (InputPin, error) {
	return b.pin(id)
}

// Close stops all edge watchers.
func (b *PeriphBoard) Close() error {
	b.mu.Lock()
	pins := make([]*PeriphPin, 0, len(b.pins))
	for _, p := range b.pins {
		pins = append(pins, p)
	}
	b.mu.Unlock()
	for _, p := range pins {
		p.stopWatch()
	}
	return nil
}

// PeriphPin adapts a periph.io gpio.PinIO.
type PeriphPin struct {
	board *PeriphBoard
	io    gpio.PinIO

	mu     sync.Mutex
	pull   gpio.Pull
	input  bool
	doneCh chan struct{}
	wg     sync.WaitGroup
}

// Name implements OutputPin and InputPin.
func (p *PeriphPin) Name() string { return p.io.Name() }

// ConfigureOutput implements OutputPin.
func (p *PeriphPin) ConfigureOutput() error {
	p.stopWatch()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = false
	if err := p.io.Out(gpio.Low); err != nil {
		return pinErr(p.Name(), err)
	}
	return nil
}

// Set implements OutputPin.
func (p *PeriphPin) Set(high bool) error {
	if err := p.io.Out(gpio.Level(high)); err != nil {
		return pinErr(p.Name(), err)
	}
	return nil
}

// ConfigureInput implements InputPin.
func (p *PeriphPin) ConfigureInput(pull Pull) error {
	var gp gpio.Pull
	switch pull {
	case PullNone:
		gp = gpio.Float
	case PullUp:
		gp = gpio.PullUp
	case PullDown:
		gp = gpio.PullDown
	default:
		return pinErr(p.Name(), fmt.Errorf("invalid pull %v", pull))
	}
	p.stopWatch()
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.io.In(gp, gpio.NoEdge); err != nil {
		return pinErr(p.Name(), err)
	}
	p.pull, p.input = gp, true
	return nil
}

// Get implements InputPin.
func (p *PeriphPin) Get() (bool, error) {
	return bool(p.io.Read()), nil
}

// SetInterrupt implements InputPin. The kernel delivers edges to a watcher
// goroutine. With EdgeBoth the pin alternates between rising and falling
// detection, starting with rising, so the reported edge never depends on a
// level read after the wake.
func (p *PeriphPin) SetInterrupt(edges Edge, handler EdgeHandler) error {
	if edges&^EdgeBoth != 0 {
		return pinErr(p.Name(), fmt.Errorf("invalid edges %v", edges))
	}
	p.stopWatch()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.input {
		return pinErr(p.Name(), ErrNotConfigured)
	}
	if handler == nil || edges == 0 {
		return nil
	}
	next := EdgeRising
	if edges == EdgeFalling {
		next = EdgeFalling
	}
	if err := p.io.In(p.pull, periphEdge(next)); err != nil {
		return pinErr(p.Name(), err)
	}
	p.doneCh = make(chan struct{})
	p.wg.Add(1)
	go p.watch(edges, next, p.pull, handler, p.doneCh)
	return nil
}

func periphEdge(e Edge) gpio.Edge {
	switch e {
	case EdgeRising:
		return gpio.RisingEdge
	case EdgeFalling:
		return gpio.FallingEdge
	case EdgeBoth:
		return gpio.BothEdges
	}
	return gpio.NoEdge
}

func (p *PeriphPin) watch(edges, next Edge, pull gpio.Pull, handler EdgeHandler, doneCh <-chan struct{}) {
	defer p.wg.Done()
	glog.V(4).Infof("%s: edge watcher started", p.Name())
	defer glog.V(4).Infof("%s: edge watcher stopped", p.Name())
	for {
		select {
		case <-doneCh:
			return
		default:
		}
		if !p.io.WaitForEdge(periphEdgePoll) {
			continue
		}
		p.board.isr.Lock()
		handler(next)
		p.board.isr.Unlock()
		if edges != EdgeBoth {
			continue
		}
		next ^= EdgeBoth
		if err := p.io.In(pull, periphEdge(next)); err != nil {
			glog.Errorf("%s: arm %v edge: %v", p.Name(), next, err)
			return
		}
	}
}

func (p *PeriphPin) stopWatch() {
	p.mu.Lock()
	doneCh := p.doneCh
	p.doneCh = nil
	p.mu.Unlock()
	if doneCh == nil {
		return
	}
	close(doneCh)
	p.wg.Wait()
}

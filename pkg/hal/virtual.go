package hal

import (
	"fmt"
	"sync"
)

type pinMode uint8

const (
	modeUnset pinMode = iota
	modeInput
	modeOutput
)

// VirtualBoard is an in-memory board used by the simulator and tests.
// Pins are created on first use.
type VirtualBoard struct {
	mu   sync.Mutex
	pins map[int]*VirtualPin

	// isr serializes edge handlers across the board, like a single
	// interrupt priority level on a microcontroller.
	isr sync.Mutex
}

// NewVirtualBoard creates an empty virtual board.
func NewVirtualBoard() *VirtualBoard {
	return &VirtualBoard{pins: make(map[int]*VirtualPin)}
}

// Pin returns the pin with the id, creating it if needed.
func (b *VirtualBoard) Pin(id int) *VirtualPin {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pins[id]
	if !ok {
		p = &VirtualPin{board: b, name: fmt.Sprintf("GPIO%d", id)}
		b.pins[id] = p
	}
	return p
}

// OutputPin implements Board.
func (b *VirtualBoard) OutputPin(id int) (OutputPin, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoPin, id)
	}
	return b.Pin(id), nil
}

// InputPin implements Board.
func (b *VirtualBoard) InputPin(id int) (InputPin, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoPin, id)
	}
	return b.Pin(id), nil
}

// VirtualPin is a pin that can be both driven by the firmware (as an output)
// and by the outside world (as an input).
type VirtualPin struct {
	board *VirtualBoard
	name  string

	mu       sync.Mutex
	mode     pinMode
	pull     Pull
	level    bool
	edges    Edge
	handler  EdgeHandler
	watchers []func(high bool)
}

// Name implements OutputPin and InputPin.
func (p *VirtualPin) Name() string { return p.name }

// ConfigureOutput implements OutputPin.
func (p *VirtualPin) ConfigureOutput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = modeOutput
	p.pull = PullNone
	return nil
}

// ConfigureInput implements InputPin.
func (p *VirtualPin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch pull {
	case PullNone, PullDown:
	case PullUp:
		p.level = true
	default:
		return pinErr(p.name, fmt.Errorf("invalid pull %v", pull))
	}
	p.mode = modeInput
	p.pull = pull
	return nil
}

// Pull returns the configured pull resistor.
func (p *VirtualPin) Pull() Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

// IsOutput reports whether the pin is configured as an output.
func (p *VirtualPin) IsOutput() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode == modeOutput
}

// IsInput reports whether the pin is configured as an input.
func (p *VirtualPin) IsInput() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode == modeInput
}

// Get implements InputPin.
func (p *VirtualPin) Get() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == modeUnset {
		return false, pinErr(p.name, ErrNotConfigured)
	}
	return p.level, nil
}

// Set implements OutputPin.
func (p *VirtualPin) Set(high bool) error {
	p.mu.Lock()
	if p.mode != modeOutput {
		p.mu.Unlock()
		return pinErr(p.name, fmt.Errorf("not in output mode"))
	}
	p.mu.Unlock()
	p.transition(high)
	return nil
}

// Drive sets the level from outside, as the device wired to the pin would.
// Enabled edge handlers run synchronously on the caller's goroutine.
func (p *VirtualPin) Drive(high bool) {
	p.transition(high)
}

// Inject delivers edge to the interrupt handler without changing the level,
// as a spurious edge or one whose opposite edge was missed would.
func (p *VirtualPin) Inject(edge Edge) {
	p.mu.Lock()
	var handler EdgeHandler
	if p.edges&edge != 0 {
		handler = p.handler
	}
	p.mu.Unlock()
	if handler != nil {
		p.board.isr.Lock()
		handler(edge)
		p.board.isr.Unlock()
	}
}

// SetInterrupt implements InputPin.
func (p *VirtualPin) SetInterrupt(edges Edge, handler EdgeHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != modeInput {
		return pinErr(p.name, ErrNotConfigured)
	}
	if edges&^EdgeBoth != 0 {
		return pinErr(p.name, fmt.Errorf("invalid edges %v", edges))
	}
	p.edges, p.handler = edges, handler
	if handler == nil {
		p.edges = 0
	}
	return nil
}

// Edges returns the edges with an installed interrupt handler.
func (p *VirtualPin) Edges() Edge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}

// Watch registers fn to be called on every level transition.
func (p *VirtualPin) Watch(fn func(high bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watchers = append(p.watchers, fn)
}

func (p *VirtualPin) transition(high bool) {
	p.mu.Lock()
	if p.level == high {
		p.mu.Unlock()
		return
	}
	p.level = high
	edge := EdgeOf(high)
	var handler EdgeHandler
	if p.edges&edge != 0 {
		handler = p.handler
	}
	watchers := p.watchers
	p.mu.Unlock()

	if handler != nil {
		p.board.isr.Lock()
		handler(edge)
		p.board.isr.Unlock()
	}
	for _, fn := range watchers {
		fn(high)
	}
}

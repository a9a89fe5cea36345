// Package hal is the GPIO contact point between the ranging pipeline and
// the board it runs on.
package hal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPin indicates the board has no pin with the requested id.
	ErrNoPin = errors.New("no such pin")
	// ErrUnsupported indicates the pin does not support the operation.
	ErrUnsupported = errors.New("unsupported")
	// ErrNotConfigured indicates the pin was used before being configured.
	ErrNotConfigured = errors.New("not configured")
)

// Pull selects the pull resistor configuration of an input.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// String implements fmt.Stringer.
func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return fmt.Sprintf("pull(%d)", uint8(p))
}

// Edge is a set of logic level transitions.
type Edge uint8

const (
	EdgeRising Edge = 1 << iota
	EdgeFalling

	EdgeBoth = EdgeRising | EdgeFalling
)

// String implements fmt.Stringer.
func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	}
	return fmt.Sprintf("edge(%d)", uint8(e))
}

// EdgeOf returns the transition that ends at the given level.
func EdgeOf(high bool) Edge {
	if high {
		return EdgeRising
	}
	return EdgeFalling
}

// EdgeHandler is called in interrupt context for every enabled transition.
// It must not block.
type EdgeHandler func(Edge)

// OutputPin is a digital output.
type OutputPin interface {
	Name() string
	ConfigureOutput() error
	Set(high bool) error
}

// InputPin is a digital input with edge interrupts.
type InputPin interface {
	Name() string
	ConfigureInput(pull Pull) error
	Get() (bool, error)
	// SetInterrupt installs handler for the given edges, nil removes it.
	SetInterrupt(edges Edge, handler EdgeHandler) error
}

// Board resolves pin ids (GPIO numbers) to pins.
type Board interface {
	OutputPin(id int) (OutputPin, error)
	InputPin(id int) (InputPin, error)
}

// PinError wraps an error with the pin it happened on.
type PinError struct {
	Pin string
	Err error
}

// Error implements error.
func (e *PinError) Error() string {
	return fmt.Sprintf("gpio: pin %s: %v", e.Pin, e.Err)
}

// Unwrap returns the cause.
func (e *PinError) Unwrap() error {
	return e.Err
}

func pinErr(name string, err error) error {
	return &PinError{Pin: name, Err: err}
}

package sonar

import (
	"fmt"

	"github.com/robotalks/sonar.go/pkg/hal"
)

// AuxPins are the buttons and LEDs of the display board. They are set up
// with the display and otherwise left alone.
type AuxPins struct {
	Buttons []hal.InputPin
	LEDs    []hal.OutputPin
}

// NewAuxPins resolves the pins on board.
func NewAuxPins(board hal.Board, buttons, leds []int) (*AuxPins, error) {
	a := &AuxPins{}
	for _, id := range buttons {
		pin, err := board.InputPin(id)
		if err != nil {
			return nil, fmt.Errorf("button pin %d: %w", id, err)
		}
		a.Buttons = append(a.Buttons, pin)
	}
	for _, id := range leds {
		pin, err := board.OutputPin(id)
		if err != nil {
			return nil, fmt.Errorf("led pin %d: %w", id, err)
		}
		a.LEDs = append(a.LEDs, pin)
	}
	return a, nil
}

// Init configures LEDs as outputs and buttons as pulled-up inputs.
func (a *AuxPins) Init() error {
	for _, pin := range a.LEDs {
		if err := pin.ConfigureOutput(); err != nil {
			return err
		}
	}
	for _, pin := range a.Buttons {
		if err := pin.ConfigureInput(hal.PullUp); err != nil {
			return err
		}
	}
	return nil
}

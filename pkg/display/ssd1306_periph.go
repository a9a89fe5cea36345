//go:build linux

package display

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
)

// SSD1306Panel drives an SSD1306 over a Linux I2C bus.
type SSD1306Panel struct {
	BusName string

	mu  sync.Mutex
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// NewSSD1306Panel creates a panel on the named I2C bus, "" selects the first.
func NewSSD1306Panel(busName string) *SSD1306Panel {
	return &SSD1306Panel{BusName: busName}
}

// Init implements Panel. It requires host drivers to be initialized.
func (p *SSD1306Panel) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		return nil
	}
	bus, err := i2creg.Open(p.BusName)
	if err != nil {
		return fmt.Errorf("open i2c bus %q: %w", p.BusName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = Width, Height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return fmt.Errorf("ssd1306 init: %w", err)
	}
	p.bus, p.dev = bus, dev
	return nil
}

// Flush implements Panel.
func (p *SSD1306Panel) Flush(pix []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return fmt.Errorf("ssd1306: not initialized")
	}
	if _, err := p.dev.Write(pix); err != nil {
		return fmt.Errorf("ssd1306 write: %w", err)
	}
	return nil
}

// Close turns the display off and releases the bus.
func (p *SSD1306Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return nil
	}
	p.dev.Halt()
	err := p.bus.Close()
	p.dev, p.bus = nil, nil
	return err
}

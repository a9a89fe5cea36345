package console

import (
	"fmt"

	"github.com/tarm/serial"
)

// DefaultBaud is the baud rate of the serial console.
const DefaultBaud = 115200

// Serial mirrors console lines to a UART.
type Serial struct {
	*Writer
	port *serial.Port
}

// OpenSerial opens the serial device name, baud 0 selects DefaultBaud.
func OpenSerial(name string, baud int) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &Serial{Writer: NewWriter(port), port: port}, nil
}

// Close closes the port.
func (s *Serial) Close() error {
	return s.port.Close()
}

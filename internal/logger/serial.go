// internal/logger/serial.go
package logger

import (
	"errors"
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenSerial opens a UART as a log sink.
func OpenSerial(device string, baud int) (io.WriteCloser, error) {
	if device == "" {
		return nil, errors.New("logger serial: device required")
	}
	if baud <= 0 {
		baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("logger serial: open %s: %w", device, err)
	}
	return p, nil
}

// internal/encoder/builder.go
package encoder

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/tamzrod/combat-controller/internal/clock"
	"github.com/tamzrod/combat-controller/internal/config"
)

// Build resolves the encoder pins through the periph registry.
// Config MUST already be validated and normalized.
func Build(c config.EncoderConfig, clk clock.Source) (*Encoder, error) {
	return build(c, clk, gpioreg.ByName)
}

func build(c config.EncoderConfig, clk clock.Source, lookup func(string) gpio.PinIO) (*Encoder, error) {
	a := lookup(c.PinA)
	if a == nil {
		return nil, fmt.Errorf("encoder: pin %q not found", c.PinA)
	}
	b := lookup(c.PinB)
	if b == nil {
		return nil, fmt.Errorf("encoder: pin %q not found", c.PinB)
	}
	return New(a, b, Config{
		Invert:               c.Invert,
		CountsPerRevolution:  c.CountsPerRevolution,
		ReductionNumerator:   c.ReductionNumerator,
		ReductionDenominator: c.ReductionDenominator,
	}, clk)
}

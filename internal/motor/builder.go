// internal/motor/builder.go
package motor

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/tamzrod/combat-controller/internal/config"
	"github.com/tamzrod/combat-controller/internal/logger"
)

// PinLookup resolves a pin name. gpioreg.ByName satisfies it.
type PinLookup func(name string) gpio.PinIO

// Build resolves pins for every configured motor and wraps each bridge in a
// Driver gated by inhibit.
// Config MUST already be validated and normalized.
func Build(motors []config.MotorConfig, inhibit Inhibitor, log *logger.Logger, lookup PinLookup) ([]*Driver, error) {
	if lookup == nil {
		lookup = gpioreg.ByName
	}

	out := make([]*Driver, 0, len(motors))
	for _, m := range motors {
		sleep, err := resolve(lookup, m.SleepPin)
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", m.Name, err)
		}
		in1, err := resolve(lookup, m.In1Pin)
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", m.Name, err)
		}
		in2, err := resolve(lookup, m.In2Pin)
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", m.Name, err)
		}

		var fault gpio.PinIn
		if m.FaultPin != "" {
			p, err := resolve(lookup, m.FaultPin)
			if err != nil {
				return nil, fmt.Errorf("motor %s: %w", m.Name, err)
			}
			fault = p
		}

		bridge, err := NewDRV8256P(sleep, in1, in2, fault, PWMConfig{
			Frequency: physic.Frequency(m.PWMHz) * physic.Hertz,
		})
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", m.Name, err)
		}

		d, err := NewDriver(m.Name, bridge, inhibit, m.Invert, log)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func resolve(lookup PinLookup, name string) (gpio.PinIO, error) {
	p := lookup(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return p, nil
}

// internal/motor/drv8256p.go
package motor

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DRV8256P drives a TI DRV8256P H-bridge in IN/IN mode.
//
//	speed > 0   IN1 PWM, IN2 low
//	speed < 0   IN1 low, IN2 PWM
//	speed = 0   both low (coast)
//	disabled    both low, nSLEEP low
type DRV8256P struct {
	sleep gpio.PinOut
	in1   gpio.PinOut
	in2   gpio.PinOut
	fault gpio.PinIn // nFAULT, active low; nil when not wired
	freq  physic.Frequency
}

// PWMConfig is the carrier for the bridge inputs.
type PWMConfig struct {
	Frequency physic.Frequency
}

// NewDRV8256P takes already-resolved pins. fault may be nil.
// The bridge starts disabled.
func NewDRV8256P(sleep, in1, in2 gpio.PinOut, fault gpio.PinIn, pwm PWMConfig) (*DRV8256P, error) {
	if sleep == nil || in1 == nil || in2 == nil {
		return nil, errors.New("drv8256p: sleep, in1 and in2 pins required")
	}
	if pwm.Frequency <= 0 {
		return nil, errors.New("drv8256p: pwm frequency must be > 0")
	}
	d := &DRV8256P{
		sleep: sleep,
		in1:   in1,
		in2:   in2,
		fault: fault,
		freq:  pwm.Frequency,
	}
	if fault != nil {
		if err := fault.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("drv8256p: fault pin %s: %w", fault, err)
		}
	}
	if err := d.Disable(); err != nil {
		return nil, err
	}
	return d, nil
}

func duty(speed int16) gpio.Duty {
	s := int64(speed)
	if s < 0 {
		s = -s
	}
	return gpio.Duty(s * int64(gpio.DutyMax) / int64(MaxSpeed))
}

func (d *DRV8256P) Disable() error {
	if err := d.in1.Out(gpio.Low); err != nil {
		return fmt.Errorf("drv8256p: in1: %w", err)
	}
	if err := d.in2.Out(gpio.Low); err != nil {
		return fmt.Errorf("drv8256p: in2: %w", err)
	}
	if err := d.sleep.Out(gpio.Low); err != nil {
		return fmt.Errorf("drv8256p: sleep: %w", err)
	}
	return nil
}

func (d *DRV8256P) Command(speed int16) error {
	if err := d.sleep.Out(gpio.High); err != nil {
		return fmt.Errorf("drv8256p: sleep: %w", err)
	}

	drive, hold := d.in1, d.in2
	if speed < 0 {
		drive, hold = d.in2, d.in1
	}

	if err := hold.Out(gpio.Low); err != nil {
		return fmt.Errorf("drv8256p: %s: %w", hold, err)
	}
	if speed == 0 {
		if err := drive.Out(gpio.Low); err != nil {
			return fmt.Errorf("drv8256p: %s: %w", drive, err)
		}
		return nil
	}
	if err := drive.PWM(duty(speed), d.freq); err != nil {
		return fmt.Errorf("drv8256p: %s pwm: %w", drive, err)
	}
	return nil
}

func (d *DRV8256P) FaultStatus() FaultStatus {
	if d.fault == nil {
		return FaultUnknown
	}
	if d.fault.Read() == gpio.Low {
		return FaultActive
	}
	return FaultNone
}

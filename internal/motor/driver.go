// internal/motor/driver.go
package motor

import (
	"errors"
	"fmt"

	"github.com/tamzrod/combat-controller/internal/logger"
)

// Speed range shared by every backend. Zero is neutral.
const (
	MinSpeed int16 = -1000
	MaxSpeed int16 = 1000
)

// FaultStatus is what a backend reports about its power stage.
type FaultStatus uint8

const (
	FaultUnknown FaultStatus = iota // no fault input wired
	FaultNone
	FaultActive
)

func (f FaultStatus) String() string {
	switch f {
	case FaultNone:
		return "ok"
	case FaultActive:
		return "fault"
	default:
		return "unknown"
	}
}

// Backend drives one physical power stage.
type Backend interface {
	// Disable puts the stage in its safe, unpowered state.
	Disable() error
	// Command applies a speed in [MinSpeed, MaxSpeed].
	Command(speed int16) error
	FaultStatus() FaultStatus
}

// Inhibitor reports whether actuators must be neutral.
// *failsafe.Registry satisfies it.
type Inhibitor interface {
	Active() bool
}

// Driver gates a backend behind the failsafe predicate.
type Driver struct {
	name    string
	backend Backend
	inhibit Inhibitor
	invert  bool
	log     *logger.Logger

	speed    int16
	disabled bool
}

// NewDriver requires an inhibitor: a driver nothing can stop is never built.
func NewDriver(name string, backend Backend, inhibit Inhibitor, invert bool, log *logger.Logger) (*Driver, error) {
	if backend == nil {
		return nil, errors.New("motor: backend required")
	}
	if inhibit == nil {
		return nil, errors.New("motor: failsafe inhibitor required")
	}
	return &Driver{
		name:     name,
		backend:  backend,
		inhibit:  inhibit,
		invert:   invert,
		log:      log,
		disabled: true,
	}, nil
}

func (d *Driver) Name() string { return d.name }

// SetSpeed stores the commanded speed, saturated to the speed range.
// It takes effect on the next Loop.
func (d *Driver) SetSpeed(s int16) {
	if s > MaxSpeed {
		s = MaxSpeed
	}
	if s < MinSpeed {
		s = MinSpeed
	}
	if d.invert {
		s = MaxSpeed + MinSpeed - s
	}
	d.speed = s
}

// Speed returns the speed the backend is commanded with when enabled.
func (d *Driver) Speed() int16 { return d.speed }

// Disabled reports whether the failsafe currently forbids power.
func (d *Driver) Disabled() bool {
	return d.inhibit.Active()
}

// Loop neutralizes the backend whenever any failsafe is active and commands
// the stored speed otherwise.
func (d *Driver) Loop() error {
	if d.Disabled() {
		if !d.disabled {
			d.log.Warn("motor", "%s disabled", d.name)
		}
		d.disabled = true
		if err := d.backend.Disable(); err != nil {
			return fmt.Errorf("motor %s: disable: %w", d.name, err)
		}
		return nil
	}

	if d.disabled {
		d.log.Info("motor", "%s enabled", d.name)
	}
	d.disabled = false
	if err := d.backend.Command(d.speed); err != nil {
		return fmt.Errorf("motor %s: command %d: %w", d.name, d.speed, err)
	}
	return nil
}

// internal/motor/group.go
package motor

import (
	"errors"
	"strings"
)

// Flag is the failsafe reason the group raises on a power-stage fault.
type Flag interface {
	SetValue(active bool)
}

// Group runs every driver once per tick and owns the motor fault reason.
type Group struct {
	drivers []*Driver
	fault   Flag
}

func NewGroup(fault Flag, drivers ...*Driver) *Group {
	return &Group{drivers: drivers, fault: fault}
}

func (g *Group) Drivers() []*Driver { return g.drivers }

// Loop polls fault inputs first so a fault neutralizes every driver on the
// same tick, then runs each driver.
// Every driver runs even when an earlier one fails.
func (g *Group) Loop() error {
	faulted := false
	for _, d := range g.drivers {
		if d.backend.FaultStatus() == FaultActive {
			faulted = true
		}
	}
	if g.fault != nil {
		g.fault.SetValue(faulted)
	}

	var errs []string
	for _, d := range g.drivers {
		if err := d.Loop(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// DisableAll neutralizes every backend regardless of failsafe state.
func (g *Group) DisableAll() error {
	var errs []string
	for _, d := range g.drivers {
		if err := d.backend.Disable(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New("motor: " + strings.Join(errs, " | "))
	}
	return nil
}

// internal/failsafe/reason.go
package failsafe

import "fmt"

// Reason names one condition that forbids powering actuators.
type Reason uint8

const (
	// Boot is held until startup completes.
	Boot Reason = iota
	// ArmSwitch is held while the operator is not requesting armed.
	// Managed by Tick only.
	ArmSwitch
	// ArmSwitchDisarm forces a clean arm-switch release before arming.
	// Managed by Tick only.
	ArmSwitchDisarm
	RadioLink
	MotorFault
	Battery

	// FirstUserReason is the first bit free for caller-defined reasons.
	FirstUserReason Reason = 8
	// MaxReasons bounds Reason values (mask width).
	MaxReasons = 32
)

var reasonNames = map[Reason]string{
	Boot:            "boot",
	ArmSwitch:       "arm_switch",
	ArmSwitchDisarm: "arm_switch_disarm",
	RadioLink:       "radio_link",
	MotorFault:      "motor_fault",
	Battery:         "battery",
}

func (r Reason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reason_%d", uint8(r))
}

// reserved reasons cannot be claimed by collaborators
func (r Reason) reserved() bool {
	return r == ArmSwitch || r == ArmSwitchDisarm
}

// Mask is a set of active reasons. Zero means actuators may be powered.
type Mask uint32

// Bit returns the mask bit for r.
func Bit(r Reason) Mask {
	return Mask(1) << (r % MaxReasons)
}

// Has reports whether r is in m.
func (m Mask) Has(r Reason) bool {
	return m&Bit(r) != 0
}

func (m Mask) String() string {
	return fmt.Sprintf("0x%X", uint32(m))
}

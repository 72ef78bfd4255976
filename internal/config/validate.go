// internal/config/validate.go
package config

import (
	"errors"
	"fmt"

	"github.com/tamzrod/combat-controller/internal/logger"
)

// MaxChannels is the highest channel count any receiver delivers.
const MaxChannels = 16

// Validate checks configuration correctness.
// It performs declarative validation only.
// Zero values mean "use the default" and are accepted here; Normalize fills
// them in.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	c := &cfg.Controller

	// name sanity (ASCII only)
	for i := 0; i < len(c.Name); i++ {
		if c.Name[i] > 0x7F {
			return fmt.Errorf("controller name %q: ASCII characters only", c.Name)
		}
	}

	if c.Loop.IntervalMs < 0 {
		return fmt.Errorf("loop.interval_ms %d must be >= 0", c.Loop.IntervalMs)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Capacity < 0 {
		return fmt.Errorf("log.capacity %d must be >= 0", c.Log.Capacity)
	}

	// ------------------------------------------------------------
	// RADIO
	// ------------------------------------------------------------

	if err := validateRadio(&c.Radio); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// FAILSAFE
	// ------------------------------------------------------------

	if c.Failsafe.ArmThresholdPercent > 100 {
		return fmt.Errorf("failsafe.arm_threshold_percent %d must be <= 100", c.Failsafe.ArmThresholdPercent)
	}
	if c.Failsafe.RearmTimeoutMs < 0 {
		return fmt.Errorf("failsafe.rearm_timeout_ms %d must be >= 0", c.Failsafe.RearmTimeoutMs)
	}

	// ------------------------------------------------------------
	// PIN OWNERSHIP (encoder + motors)
	// ------------------------------------------------------------

	// key = pin name, value = owner
	pinOwner := make(map[string]string)
	claim := func(pin, owner string) error {
		if pin == "" {
			return nil
		}
		if prev, exists := pinOwner[pin]; exists {
			return fmt.Errorf("pin collision: %s used by %s and %s", pin, prev, owner)
		}
		pinOwner[pin] = owner
		return nil
	}

	if e := c.Encoder; e != nil {
		if e.PinA == "" || e.PinB == "" {
			return errors.New("encoder: pin_a and pin_b required")
		}
		if err := claim(e.PinA, "encoder.pin_a"); err != nil {
			return err
		}
		if err := claim(e.PinB, "encoder.pin_b"); err != nil {
			return err
		}
	}

	motorNames := make(map[string]bool)
	for i, m := range c.Motors {
		if m.Name == "" {
			return fmt.Errorf("motors[%d]: name required", i)
		}
		if motorNames[m.Name] {
			return fmt.Errorf("motor %q: duplicate name", m.Name)
		}
		motorNames[m.Name] = true

		if m.SleepPin == "" || m.In1Pin == "" || m.In2Pin == "" {
			return fmt.Errorf("motor %q: sleep_pin, in1_pin and in2_pin required", m.Name)
		}
		for _, p := range []struct{ pin, role string }{
			{m.SleepPin, "sleep_pin"},
			{m.In1Pin, "in1_pin"},
			{m.In2Pin, "in2_pin"},
			{m.FaultPin, "fault_pin"},
		} {
			if err := claim(p.pin, fmt.Sprintf("motor %s.%s", m.Name, p.role)); err != nil {
				return err
			}
		}
		if m.PWMHz < 0 {
			return fmt.Errorf("motor %q: pwm_hz %d must be >= 0", m.Name, m.PWMHz)
		}
		if m.ThrottleChannel < 0 || m.ThrottleChannel >= MaxChannels {
			return fmt.Errorf("motor %q: throttle_channel %d out of range 0..%d",
				m.Name, m.ThrottleChannel, MaxChannels-1)
		}
		if m.ThrottleChannel == c.Radio.ArmChannel || m.ThrottleChannel == c.Radio.PrearmChannel {
			return fmt.Errorf("motor %q: throttle_channel %d is an arm switch channel", m.Name, m.ThrottleChannel)
		}
	}

	// ------------------------------------------------------------
	// WEAPON SPEED LOOP
	// ------------------------------------------------------------

	if w := c.Weapon; w != nil {
		if c.Encoder == nil {
			return errors.New("weapon: requires an encoder")
		}
		if !motorNames[w.Motor] {
			return fmt.Errorf("weapon: unknown motor %q", w.Motor)
		}
		if w.MaxRPM <= 0 {
			return fmt.Errorf("weapon: max_rpm %d must be > 0", w.MaxRPM)
		}
		if w.GainDenominator < 0 {
			return fmt.Errorf("weapon: gain_denominator %d must be >= 0", w.GainDenominator)
		}
	}

	// ------------------------------------------------------------
	// STATUS
	// ------------------------------------------------------------

	if s := c.Status; s != nil {
		if s.Endpoint == "" {
			return errors.New("status: endpoint required")
		}
		if s.IntervalMs < 0 || s.TimeoutMs < 0 {
			return errors.New("status: interval_ms and timeout_ms must be >= 0")
		}
	}

	return nil
}

func validateRadio(r *RadioConfig) error {
	switch r.Protocol {
	case ProtocolSBUS:
		if r.Device == "" {
			return errors.New("radio: sbus requires device")
		}
	case ProtocolModbus:
		if r.Endpoint == "" {
			return errors.New("radio: modbus requires endpoint")
		}
		if r.Count > MaxChannels {
			return fmt.Errorf("radio: count %d exceeds %d channels", r.Count, MaxChannels)
		}
		if r.Count != 0 && (int(r.Count) <= r.ArmChannel || int(r.Count) <= r.PrearmChannel) {
			return fmt.Errorf("radio: count %d does not cover arm/prearm channels", r.Count)
		}
	default:
		return fmt.Errorf("radio: unsupported protocol %q", r.Protocol)
	}

	for _, ch := range []struct {
		name string
		v    int
	}{
		{"arm_channel", r.ArmChannel},
		{"prearm_channel", r.PrearmChannel},
	} {
		if ch.v < 0 || ch.v >= MaxChannels {
			return fmt.Errorf("radio: %s %d out of range 0..%d", ch.name, ch.v, MaxChannels-1)
		}
	}
	if r.ArmChannel == r.PrearmChannel {
		return fmt.Errorf("radio: arm_channel and prearm_channel must differ (both %d)", r.ArmChannel)
	}
	if r.StaleMs < 0 || r.TimeoutMs < 0 || r.PollIntervalMs < 0 {
		return errors.New("radio: stale_ms, timeout_ms and poll_interval_ms must be >= 0")
	}
	return nil
}

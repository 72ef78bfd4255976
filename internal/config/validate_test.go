// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a minimal valid controller quickly
func baseConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			Name: "bot",
			Radio: RadioConfig{
				Protocol:      ProtocolSBUS,
				Device:        "/dev/ttyAMA0",
				ArmChannel:    4,
				PrearmChannel: 5,
			},
			Encoder: &EncoderConfig{PinA: "GPIO17", PinB: "GPIO27"},
			Motors: []MotorConfig{
				motor("left", "GPIO5", "GPIO6", "GPIO13", 1),
				motor("right", "GPIO19", "GPIO20", "GPIO21", 2),
			},
		},
	}
}

func motor(name, sleep, in1, in2 string, ch int) MotorConfig {
	return MotorConfig{
		Name:            name,
		SleepPin:        sleep,
		In1Pin:          in1,
		In2Pin:          in2,
		ThrottleChannel: ch,
	}
}

func expectErr(t *testing.T, cfg *Config, contains string) {
	t.Helper()
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Fatalf("expected error containing %q, got %v", contains, err)
	}
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	if err := Validate(baseConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestValidate_NonASCIIName(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Name = "bötl"
	expectErr(t, cfg, "ASCII")
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Log.Level = "loud"
	expectErr(t, cfg, "log.level")
}

func TestValidate_UnknownProtocol(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Radio.Protocol = "ppm"
	expectErr(t, cfg, "unsupported protocol")
}

func TestValidate_SBUSNeedsDevice(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Radio.Device = ""
	expectErr(t, cfg, "requires device")
}

func TestValidate_ModbusRadio(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Radio.Protocol = ProtocolModbus
	cfg.Controller.Radio.Device = ""
	expectErr(t, cfg, "requires endpoint")

	cfg.Controller.Radio.Endpoint = "127.0.0.1:502"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Controller.Radio.Count = 17
	expectErr(t, cfg, "exceeds")

	// prearm is channel 5, count 5 covers 0..4
	cfg.Controller.Radio.Count = 5
	expectErr(t, cfg, "does not cover")
}

func TestValidate_ArmChannels(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Radio.PrearmChannel = cfg.Controller.Radio.ArmChannel
	expectErr(t, cfg, "must differ")

	cfg = baseConfig()
	cfg.Controller.Radio.ArmChannel = MaxChannels
	expectErr(t, cfg, "arm_channel")
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Failsafe.ArmThresholdPercent = 100
	if err := Validate(cfg); err != nil {
		t.Fatalf("100%% must be accepted: %v", err)
	}
	cfg.Controller.Failsafe.ArmThresholdPercent = 101
	expectErr(t, cfg, "arm_threshold_percent")
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Failsafe.RearmTimeoutMs = -1
	expectErr(t, cfg, "rearm_timeout_ms")
}

func TestValidate_EncoderPinsRequired(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Encoder.PinB = ""
	expectErr(t, cfg, "pin_a and pin_b")
}

func TestValidate_EncoderPinsDistinct(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Encoder.PinB = cfg.Controller.Encoder.PinA
	expectErr(t, cfg, "pin collision")
}

func TestValidate_PinSharedByMotorAndEncoder(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Motors[1].FaultPin = "GPIO17"
	expectErr(t, cfg, "pin collision: GPIO17")
}

func TestValidate_PinSharedByMotors(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Motors[1].In1Pin = cfg.Controller.Motors[0].In2Pin
	expectErr(t, cfg, "pin collision")
}

func TestValidate_DuplicateMotorName(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Motors[1].Name = "left"
	expectErr(t, cfg, "duplicate name")
}

func TestValidate_MotorPinsRequired(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Motors[0].SleepPin = ""
	expectErr(t, cfg, "required")
}

func TestValidate_ThrottleOnArmChannel(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Motors[0].ThrottleChannel = cfg.Controller.Radio.ArmChannel
	expectErr(t, cfg, "arm switch channel")
}

func TestValidate_Weapon(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Weapon = &WeaponConfig{Motor: "left", MaxRPM: 3000}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Controller.Weapon.Motor = "spinner"
	expectErr(t, cfg, "unknown motor")

	cfg.Controller.Weapon.Motor = "left"
	cfg.Controller.Weapon.MaxRPM = 0
	expectErr(t, cfg, "max_rpm")

	cfg.Controller.Weapon.MaxRPM = 3000
	cfg.Controller.Encoder = nil
	expectErr(t, cfg, "requires an encoder")
}

func TestValidate_StatusNeedsEndpoint(t *testing.T) {
	cfg := baseConfig()
	cfg.Controller.Status = &StatusConfig{}
	expectErr(t, cfg, "status: endpoint")
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := baseConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Controller.Loop.IntervalMs != 0 || cfg.Controller.Motors[0].PWMHz != 0 {
		t.Fatalf("Validate must not fill defaults")
	}
}

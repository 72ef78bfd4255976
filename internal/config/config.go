// internal/config/config.go
package config

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
}

type ControllerConfig struct {
	Name     string         `yaml:"name"`
	Loop     LoopConfig     `yaml:"loop"`
	Log      LogConfig      `yaml:"log"`
	Radio    RadioConfig    `yaml:"radio"`
	Failsafe FailsafeConfig `yaml:"failsafe"`
	Encoder  *EncoderConfig `yaml:"encoder"` // optional
	Motors   []MotorConfig  `yaml:"motors"`
	Weapon   *WeaponConfig  `yaml:"weapon"` // optional, needs encoder
	Status   *StatusConfig  `yaml:"status"` // optional
}

// ---- LOOP ----

type LoopConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"`
	Capacity   int    `yaml:"capacity"`
	SerialPort string `yaml:"serial_port"` // empty => stderr
	Baud       int    `yaml:"baud"`
}

// ---- RADIO ----

const (
	ProtocolSBUS   = "sbus"
	ProtocolModbus = "modbus"
)

type RadioConfig struct {
	Protocol string `yaml:"protocol"`

	// sbus
	Device string `yaml:"device"`

	// modbus receiver bridge
	Endpoint       string `yaml:"endpoint"`
	UnitID         uint8  `yaml:"unit_id"`
	Address        uint16 `yaml:"address"`
	Count          uint16 `yaml:"count"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`

	// channel mapping (0-based)
	ArmChannel    int `yaml:"arm_channel"`
	PrearmChannel int `yaml:"prearm_channel"`

	FullScale uint16 `yaml:"full_scale"`
	StaleMs   int    `yaml:"stale_ms"`
}

// ---- FAILSAFE ----

type FailsafeConfig struct {
	ArmThresholdPercent uint8  `yaml:"arm_threshold_percent"`
	RearmTimeoutMs      int    `yaml:"rearm_timeout_ms"`
	RepeatThreshold     uint32 `yaml:"repeat_threshold"`
}

// ---- ENCODER ----

type EncoderConfig struct {
	PinA                 string `yaml:"pin_a"`
	PinB                 string `yaml:"pin_b"`
	Invert               bool   `yaml:"invert"`
	CountsPerRevolution  uint16 `yaml:"counts_per_revolution"`
	ReductionNumerator   uint16 `yaml:"reduction_numerator"`
	ReductionDenominator uint16 `yaml:"reduction_denominator"`
}

// ---- MOTORS ----

type MotorConfig struct {
	Name            string `yaml:"name"`
	SleepPin        string `yaml:"sleep_pin"`
	In1Pin          string `yaml:"in1_pin"`
	In2Pin          string `yaml:"in2_pin"`
	FaultPin        string `yaml:"fault_pin"` // optional
	PWMHz           int    `yaml:"pwm_hz"`
	Invert          bool   `yaml:"invert"`
	ThrottleChannel int    `yaml:"throttle_channel"`
}

// ---- WEAPON ----

// WeaponConfig closes a speed loop on the encoder for one motor.
type WeaponConfig struct {
	Motor           string `yaml:"motor"`
	MaxRPM          int32  `yaml:"max_rpm"`
	GainNumerator   int32  `yaml:"gain_numerator"`
	GainDenominator int32  `yaml:"gain_denominator"`
}

// ---- STATUS ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	IntervalMs int    `yaml:"interval_ms"`
}

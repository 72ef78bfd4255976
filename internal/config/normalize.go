// internal/config/normalize.go
package config

// Defaults applied by Normalize to zero-valued fields.
const (
	DefaultLoopIntervalMs      = 5
	DefaultLogCapacity         = 64
	DefaultLogBaud             = 115200
	DefaultFullScale           = 2047
	DefaultStaleMs             = 100
	DefaultRadioTimeoutMs      = 50
	DefaultPollIntervalMs      = 10
	DefaultArmThresholdPercent = 90
	DefaultRearmTimeoutMs      = 1000
	DefaultRepeatThreshold     = 3
	DefaultPWMHz               = 20000
	DefaultStatusIntervalMs    = 200
	DefaultStatusTimeoutMs     = 500
	DefaultName                = "robot"

	// NameMaxChars is what the status block can carry.
	NameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	c := &cfg.Controller

	if c.Name == "" {
		c.Name = DefaultName
	}
	if len(c.Name) > NameMaxChars {
		c.Name = c.Name[:NameMaxChars]
	}

	setDefault(&c.Loop.IntervalMs, DefaultLoopIntervalMs)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	setDefault(&c.Log.Capacity, DefaultLogCapacity)
	setDefault(&c.Log.Baud, DefaultLogBaud)

	r := &c.Radio
	setDefault(&r.FullScale, DefaultFullScale)
	setDefault(&r.StaleMs, DefaultStaleMs)
	if r.Protocol == ProtocolModbus {
		setDefault(&r.Count, MaxChannels)
		setDefault(&r.TimeoutMs, DefaultRadioTimeoutMs)
		setDefault(&r.PollIntervalMs, DefaultPollIntervalMs)
	}

	setDefault(&c.Failsafe.ArmThresholdPercent, DefaultArmThresholdPercent)
	setDefault(&c.Failsafe.RearmTimeoutMs, DefaultRearmTimeoutMs)
	setDefault(&c.Failsafe.RepeatThreshold, DefaultRepeatThreshold)

	if e := c.Encoder; e != nil {
		setDefault(&e.CountsPerRevolution, 1)
		setDefault(&e.ReductionNumerator, 1)
		setDefault(&e.ReductionDenominator, 1)
	}

	for i := range c.Motors {
		setDefault(&c.Motors[i].PWMHz, DefaultPWMHz)
	}

	if w := c.Weapon; w != nil {
		setDefault(&w.GainNumerator, 1)
		setDefault(&w.GainDenominator, 1)
	}

	if s := c.Status; s != nil {
		setDefault(&s.IntervalMs, DefaultStatusIntervalMs)
		setDefault(&s.TimeoutMs, DefaultStatusTimeoutMs)
	}
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

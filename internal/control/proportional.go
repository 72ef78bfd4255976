// internal/control/proportional.go
package control

// Proportional is a feed-forward plus proportional updater:
//
//	out = setpoint*FFNum/FFDen + err*KpNum/KpDen
//
// A zero denominator disables that term.
type Proportional struct {
	FFNum, FFDen int64
	KpNum, KpDen int64
}

func (p Proportional) Update(setpoint, err int64) int64 {
	var out int64
	if p.FFDen != 0 {
		out += setpoint * p.FFNum / p.FFDen
	}
	if p.KpDen != 0 {
		out += err * p.KpNum / p.KpDen
	}
	return out
}

// UpdaterFunc adapts a plain function to Updater.
type UpdaterFunc func(setpoint, err int64) int64

func (f UpdaterFunc) Update(setpoint, err int64) int64 { return f(setpoint, err) }

// internal/control/loop.go
package control

import (
	"errors"

	"github.com/tamzrod/combat-controller/internal/logger"
)

// Signed is the set of setpoint and output types a Loop accepts.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Updater computes a new raw output from the setpoint and the error.
// The Loop saturates the result, so it may fall outside the output range.
type Updater interface {
	Update(setpoint, err int64) int64
}

// Loop is a saturating setpoint/output controller.
// Not safe for concurrent use; drive it from the main loop.
type Loop[S, O Signed] struct {
	spMin, spMax   S
	outMin, outMax O

	sp     S
	output O
	err    int64

	update Updater
	log    *logger.Logger
	key    string
}

// NewLoop builds a loop with its setpoint and output at their range midpoints.
func NewLoop[S, O Signed](spMin, spMax S, outMin, outMax O, u Updater, log *logger.Logger, key string) (*Loop[S, O], error) {
	if spMin > spMax || outMin > outMax {
		return nil, errors.New("control: range min exceeds max")
	}
	if u == nil {
		return nil, errors.New("control: updater required")
	}
	l := &Loop[S, O]{
		spMin:  spMin,
		spMax:  spMax,
		outMin: outMin,
		outMax: outMax,
		update: u,
		log:    log,
		key:    key,
	}
	l.initial()
	return l, nil
}

func (l *Loop[S, O]) initial() {
	l.sp = S((int64(l.spMin) + int64(l.spMax)) / 2)
	l.output = O((int64(l.outMin) + int64(l.outMax)) / 2)
	l.err = 0
}

// SetSetpoint stores sp saturated to the setpoint range.
// It returns false when sp had to be clamped.
func (l *Loop[S, O]) SetSetpoint(sp S) bool {
	v, ok := clamp(int64(sp), int64(l.spMin), int64(l.spMax))
	l.sp = S(v)
	return ok
}

// SetOutput stores out saturated to the output range.
// It returns false when out had to be clamped.
func (l *Loop[S, O]) SetOutput(out O) bool {
	v, ok := clamp(int64(out), int64(l.outMin), int64(l.outMax))
	l.output = O(v)
	return ok
}

// Step runs one iteration against feedback and returns the new output.
func (l *Loop[S, O]) Step(feedback S) O {
	l.err = int64(l.sp) - int64(feedback)

	raw := l.update.Update(int64(l.sp), l.err)
	v, _ := clamp(raw, int64(l.outMin), int64(l.outMax))
	l.output = O(v)

	l.log.Debug(l.key, "|%+05d|%+05d|%+05d|", int64(l.sp), int64(l.output), l.err)
	return l.output
}

// Reset returns to the initial state, then applies sp.
func (l *Loop[S, O]) Reset(sp S) {
	l.initial()
	l.SetSetpoint(sp)
}

func (l *Loop[S, O]) Setpoint() S { return l.sp }
func (l *Loop[S, O]) Output() O   { return l.output }

// Error is setpoint minus the last feedback, widened so it cannot wrap.
func (l *Loop[S, O]) Error() int64 { return l.err }

func clamp(v, lo, hi int64) (int64, bool) {
	if v > hi {
		return hi, false
	}
	if v < lo {
		return lo, false
	}
	return v, true
}

// internal/status/collect.go
package status

import (
	"math"

	"github.com/tamzrod/combat-controller/internal/failsafe"
)

// FailsafeView is the read side of *failsafe.Registry.
type FailsafeView interface {
	Mask() failsafe.Mask
	RepeatCount() uint32
	Expired() bool
	LockedOut() bool
}

// EncoderView is the read side of *encoder.Encoder.
type EncoderView interface {
	Skipped() uint32
	RPM() int32
	Frequency() int32
}

// DropCounter is the read side of *logger.Logger.
type DropCounter interface {
	Drops() uint32
}

// Collector assembles snapshots from live components.
// The encoder and log views may be nil.
// Not safe for concurrent use; drive it from one goroutine.
type Collector struct {
	fs  FailsafeView
	enc EncoderView
	log DropCounter

	secondsInFailsafe uint16
}

func NewCollector(fs FailsafeView, enc EncoderView, log DropCounter) *Collector {
	return &Collector{fs: fs, enc: enc, log: log}
}

// TickSecond advances the failsafe duration counter. Call it at 1 Hz.
// The counter saturates and resets once armed.
func (c *Collector) TickSecond() {
	if c.fs.Mask() == 0 {
		c.secondsInFailsafe = 0
		return
	}
	if c.secondsInFailsafe < math.MaxUint16 {
		c.secondsInFailsafe++
	}
}

// Snapshot reads every view once.
func (c *Collector) Snapshot() Snapshot {
	mask := c.fs.Mask()

	s := Snapshot{
		Armed:       mask == 0,
		Mask:        uint32(mask),
		RepeatCount: sat16u(c.fs.RepeatCount()),
	}
	if c.fs.Expired() {
		s.Flags |= FlagRearmExpired
	}
	if c.fs.LockedOut() {
		s.Flags |= FlagRepeatLockout
	}
	if !s.Armed {
		s.SecondsInFailsafe = c.secondsInFailsafe
	}

	if c.enc != nil {
		s.Skipped = c.enc.Skipped()
		s.RPM = sat16(c.enc.RPM())
		s.Frequency = sat16(c.enc.Frequency())
	}
	if c.log != nil {
		s.LogDrops = sat16u(c.log.Drops())
	}
	return s
}

func sat16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func sat16u(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

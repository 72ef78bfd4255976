// internal/encoder/encoder.go
package encoder

import (
	"errors"
	"math"
	"sync/atomic"

	"golang.org/x/sys/cpu"
	"periph.io/x/conn/v3/gpio"

	"github.com/tamzrod/combat-controller/internal/clock"
)

// Phase is the 2-bit (A,B) channel reading, A in bit 1.
//
//	A: _|--|__|--|__|--|_
//	B: __|--|__|--|__|--|
//
// Forward order is 00 -> 10 -> 11 -> 01 -> 00.
type Phase uint8

const (
	Phase00 Phase = 0b00
	Phase01 Phase = 0b01
	Phase10 Phase = 0b10
	Phase11 Phase = 0b11
)

var (
	forwardNext  = [4]Phase{Phase00: Phase10, Phase10: Phase11, Phase11: Phase01, Phase01: Phase00}
	backwardNext = [4]Phase{Phase00: Phase01, Phase01: Phase11, Phase11: Phase10, Phase10: Phase00}
)

// Config is immutable after New.
type Config struct {
	Invert               bool
	CountsPerRevolution  uint16
	ReductionNumerator   uint16
	ReductionDenominator uint16
}

// Encoder decodes a two-channel quadrature signal.
//
// Sample* may run from edge goroutines concurrently with Update. Phase,
// skipped count and tick count share one atomic word so every sample is one
// indivisible transition and Update's read-and-reset never loses or doubles a
// tick.
type Encoder struct {
	a, b gpio.PinIn
	cfg  Config
	clk  clock.Source

	_     cpu.CacheLinePad
	state atomic.Uint64
	_     cpu.CacheLinePad

	// main loop side
	lastUpdate int64
	lastCount  atomic.Int32
	frequency  atomic.Int32
	rpm        atomic.Int32
}

// state word layout
const (
	phaseBits  = 0x3
	skipShift  = 2
	skipMask   = 1<<30 - 1
	countShift = 32
)

func pack(p Phase, skipped uint32, count int32) uint64 {
	return uint64(p)&phaseBits |
		uint64(skipped&skipMask)<<skipShift |
		uint64(uint32(count))<<countShift
}

func unpack(w uint64) (Phase, uint32, int32) {
	return Phase(w & phaseBits),
		uint32(w>>skipShift) & skipMask,
		int32(uint32(w >> countShift))
}

// New reads the initial phase from both pins.
func New(a, b gpio.PinIn, cfg Config, clk clock.Source) (*Encoder, error) {
	if a == nil || b == nil {
		return nil, errors.New("encoder: both channel pins required")
	}
	if clk == nil {
		return nil, errors.New("encoder: clock required")
	}
	if cfg.CountsPerRevolution == 0 {
		return nil, errors.New("encoder: counts per revolution must be > 0")
	}
	if cfg.ReductionNumerator == 0 || cfg.ReductionDenominator == 0 {
		return nil, errors.New("encoder: reduction ratio terms must be > 0")
	}

	e := &Encoder{
		a:          a,
		b:          b,
		cfg:        cfg,
		clk:        clk,
		lastUpdate: clk.Millis(),
	}
	e.state.Store(pack(readPhase(a, b), 0, 0))
	return e, nil
}

func level(p gpio.PinIn) Phase {
	if p.Read() == gpio.High {
		return 1
	}
	return 0
}

func readPhase(a, b gpio.PinIn) Phase {
	return level(a)<<1 | level(b)
}

// SampleChannels resamples both pins.
func (e *Encoder) SampleChannels() {
	p := readPhase(e.a, e.b)
	e.transition(func(Phase) Phase { return p })
}

// SampleA resamples channel A, keeping the last known B bit.
func (e *Encoder) SampleA() {
	a := level(e.a) << 1
	e.transition(func(cur Phase) Phase { return cur&0b01 | a })
}

// SampleB resamples channel B, keeping the last known A bit.
func (e *Encoder) SampleB() {
	b := level(e.b)
	e.transition(func(cur Phase) Phase { return cur&0b10 | b })
}

// Apply feeds an already-read phase into the decoder.
func (e *Encoder) Apply(p Phase) {
	p &= phaseBits
	e.transition(func(Phase) Phase { return p })
}

func (e *Encoder) transition(next func(cur Phase) Phase) {
	for {
		old := e.state.Load()
		cur, skipped, count := unpack(old)

		p := next(cur)
		if p == cur {
			return
		}

		switch p {
		case forwardNext[cur]:
			count++
		case backwardNext[cur]:
			count--
		default:
			// missed a sample; lose this tick, keep tracking
			skipped++
		}

		if e.state.CompareAndSwap(old, pack(p, skipped, count)) {
			return
		}
	}
}

// takeCount zeroes the tick count and returns its prior value.
func (e *Encoder) takeCount() int32 {
	for {
		old := e.state.Load()
		p, skipped, count := unpack(old)
		if e.state.CompareAndSwap(old, pack(p, skipped, 0)) {
			return count
		}
	}
}

// Update computes count frequency and RPM over the window since the last
// update. It does nothing until the clock has advanced, and reports whether a
// new window was taken.
func (e *Encoder) Update() bool {
	now := e.clk.Millis()
	if now <= e.lastUpdate {
		return false
	}

	delta := e.takeCount()
	if e.cfg.Invert {
		delta = -delta
	}

	elapsed := now - e.lastUpdate
	d := int64(delta)

	// |d| <= 2^31 and num <= 2^16 keep d*60000*num inside int64.
	freq := d * 1000 / elapsed
	rpm := d * 1000 * 60 * int64(e.cfg.ReductionNumerator) /
		(elapsed * int64(e.cfg.CountsPerRevolution) * int64(e.cfg.ReductionDenominator))

	e.lastCount.Store(delta)
	e.frequency.Store(saturate(freq))
	e.rpm.Store(saturate(rpm))
	e.lastUpdate = now
	return true
}

func saturate(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// Count returns ticks accumulated since the last Update.
func (e *Encoder) Count() int32 {
	_, _, c := unpack(e.state.Load())
	return c
}

// Skipped returns the number of invalid transitions seen. Wraps at 2^30.
func (e *Encoder) Skipped() uint32 {
	_, s, _ := unpack(e.state.Load())
	return s
}

// Phase returns the last observed channel phase.
func (e *Encoder) Phase() Phase {
	p, _, _ := unpack(e.state.Load())
	return p
}

// LastCount is the (direction-corrected) delta of the last window.
func (e *Encoder) LastCount() int32 { return e.lastCount.Load() }

// Frequency is counts per second over the last window.
func (e *Encoder) Frequency() int32 { return e.frequency.Load() }

// RPM is output-shaft speed over the last window.
func (e *Encoder) RPM() int32 { return e.rpm.Load() }

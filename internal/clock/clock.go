// internal/clock/clock.go
package clock

import (
	"sync/atomic"
	"time"
)

// Source returns a monotonic millisecond counter.
// Zero is process start. Callers compare deltas only.
type Source interface {
	Millis() int64
}

type system struct {
	start time.Time
}

// System returns a Source counting from the moment it was created.
func System() Source {
	return &system{start: time.Now()}
}

func (s *system) Millis() int64 {
	return time.Since(s.start).Milliseconds()
}

// Manual is a Source whose time only moves when told to.
// Safe for concurrent use.
type Manual struct {
	ms atomic.Int64
}

func (m *Manual) Millis() int64 { return m.ms.Load() }

// Set jumps to an absolute millisecond value.
func (m *Manual) Set(ms int64) { m.ms.Store(ms) }

// Advance moves the clock forward by d, truncated to milliseconds.
func (m *Manual) Advance(d time.Duration) { m.ms.Add(d.Milliseconds()) }

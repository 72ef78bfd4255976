// internal/radio/monitor.go
package radio

import (
	"errors"
	"time"

	"github.com/tamzrod/combat-controller/internal/clock"
)

// Flag is a failsafe reason the monitor may raise or drop.
type Flag interface {
	SetValue(active bool)
}

// Monitor turns the newest receiver frame into per-tick channel readings and
// owns the radio link failsafe reason.
type Monitor struct {
	src     Source
	link    Flag
	clk     clock.Source
	staleMs int64
}

func NewMonitor(src Source, link Flag, clk clock.Source, stale time.Duration) (*Monitor, error) {
	if src == nil || link == nil || clk == nil {
		return nil, errors.New("radio monitor: source, link flag and clock required")
	}
	if stale <= 0 {
		return nil, errors.New("radio monitor: stale timeout must be > 0")
	}
	return &Monitor{
		src:     src,
		link:    link,
		clk:     clk,
		staleMs: stale.Milliseconds(),
	}, nil
}

// Poll returns the current frame. A missing, stale, frame-lost or
// receiver-failsafe frame raises the link reason and comes back with every
// channel invalid.
func (m *Monitor) Poll() Frame {
	f, ok := m.src.Latest()
	fresh := ok && !f.Failsafe && !f.FrameLost && m.clk.Millis()-f.Millis <= m.staleMs

	m.link.SetValue(!fresh)
	if !fresh {
		return Frame{Millis: f.Millis, FrameLost: f.FrameLost, Failsafe: true}
	}
	return f
}

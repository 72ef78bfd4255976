// internal/radio/modbus.go
package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/combat-controller/internal/clock"
)

// invalidRegister marks a channel the bridge has no reading for.
const invalidRegister uint16 = 0xFFFF

// RegisterReader is the only Modbus operation the bridge needs.
// modbus.Client satisfies it.
type RegisterReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// BridgeConfig is the minimal runtime config the bridge poller needs.
type BridgeConfig struct {
	Address   uint16
	Count     uint16
	Interval  time.Duration
	FullScale uint16
}

// ModbusBridge polls RC channels from a receiver bridge that exposes them as
// holding registers. A failed read produces a failsafe frame.
type ModbusBridge struct {
	cfg    BridgeConfig
	client RegisterReader
	clk    clock.Source
	closer func() error
	q      *frameQueue
}

// NewModbusBridge creates a poller with immutable config.
func NewModbusBridge(cfg BridgeConfig, client RegisterReader, clk clock.Source) (*ModbusBridge, error) {
	if client == nil {
		return nil, errors.New("radio modbus: client required")
	}
	if clk == nil {
		return nil, errors.New("radio modbus: clock required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("radio modbus: interval must be > 0")
	}
	if cfg.Count == 0 || cfg.Count > NumChannels {
		return nil, fmt.Errorf("radio modbus: channel count %d out of range 1..%d", cfg.Count, NumChannels)
	}
	q, err := newFrameQueue(4)
	if err != nil {
		return nil, err
	}
	return &ModbusBridge{
		cfg:    cfg,
		client: client,
		clk:    clk,
		closer: func() error { return nil },
		q:      q,
	}, nil
}

// DialModbusBridge connects a Modbus TCP bridge.
func DialModbusBridge(endpoint string, unitID uint8, timeout time.Duration, cfg BridgeConfig, clk clock.Source) (*ModbusBridge, error) {
	if endpoint == "" {
		return nil, errors.New("radio modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(endpoint)
	h.Timeout = timeout
	h.SlaveId = unitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("radio modbus: connect %s: %w", endpoint, err)
	}

	b, err := NewModbusBridge(cfg, modbus.NewClient(h), clk)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	b.closer = h.Close
	return b, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: a failed or short read yields a failsafe frame.
func (b *ModbusBridge) PollOnce() (Frame, error) {
	f := Frame{Millis: b.clk.Millis()}

	raw, err := b.client.ReadHoldingRegisters(b.cfg.Address, b.cfg.Count)
	if err != nil {
		f.Failsafe = true
		return f, err
	}
	if len(raw) < int(b.cfg.Count)*2 {
		f.Failsafe = true
		return f, fmt.Errorf("radio modbus: short read %d bytes, want %d", len(raw), int(b.cfg.Count)*2)
	}

	for i := 0; i < int(b.cfg.Count); i++ {
		v := uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
		f.Channels[i] = Channel{
			Value: v,
			Valid: v != invalidRegister && v <= b.cfg.FullScale,
		}
	}
	return f, nil
}

// Run starts the ticker loop. One goroutine. No overlap. No retries.
func (b *ModbusBridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// read errors are carried by the failsafe frame
			f, _ := b.PollOnce()
			b.q.publish(f)
		}
	}
}

func (b *ModbusBridge) Latest() (Frame, bool) { return b.q.newest() }

func (b *ModbusBridge) Close() error { return b.closer() }

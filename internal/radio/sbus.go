// internal/radio/sbus.go
package radio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/tamzrod/combat-controller/internal/clock"
)

// SBUS frame layout (LOCKED):
//
//	0      header 0x0F
//	1..22  16 channels x 11 bits, LSB first
//	23     flags: ch17, ch18, frame lost, failsafe
//	24     footer 0x00 (SBUS2: low nibble 0x4)
const (
	SBUSFrameLen = 25
	SBUSMaxValue = 2047

	sbusHeader    byte = 0x0F
	sbusFooter    byte = 0x00
	flagFrameLost byte = 0x04
	flagFailsafe  byte = 0x08
	sbusBaud           = 100000
)

var (
	errSBUSHeader = errors.New("sbus: bad header")
	errSBUSFooter = errors.New("sbus: bad footer")
)

func validFooter(b byte) bool {
	return b == sbusFooter || b&0x0F == 0x04
}

// DecodeSBUS decodes one complete frame.
// A channel is valid only when the receiver reports neither frame lost nor
// failsafe and the value fits inside fullScale.
func DecodeSBUS(b []byte, fullScale uint16) (Frame, error) {
	var f Frame
	if len(b) != SBUSFrameLen {
		return f, fmt.Errorf("sbus: frame length %d, want %d", len(b), SBUSFrameLen)
	}
	if b[0] != sbusHeader {
		return f, errSBUSHeader
	}
	if !validFooter(b[24]) {
		return f, errSBUSFooter
	}

	flags := b[23]
	f.FrameLost = flags&flagFrameLost != 0
	f.Failsafe = flags&flagFailsafe != 0

	var acc uint32
	var nbits uint
	ch := 0
	for _, by := range b[1:23] {
		acc |= uint32(by) << nbits
		nbits += 8
		for nbits >= 11 && ch < NumChannels {
			v := uint16(acc & 0x7FF)
			acc >>= 11
			nbits -= 11
			f.Channels[ch] = Channel{
				Value: v,
				Valid: !f.Failsafe && !f.FrameLost && v <= fullScale,
			}
			ch++
		}
	}
	return f, nil
}

// sbusDecoder assembles frames from a byte stream and resynchronizes on the
// next header byte after a bad frame.
type sbusDecoder struct {
	fullScale uint16
	buf       [SBUSFrameLen]byte
	n         int
	bad       uint32
}

func (d *sbusDecoder) feed(b byte) (Frame, bool) {
	if d.n == 0 && b != sbusHeader {
		return Frame{}, false
	}
	d.buf[d.n] = b
	d.n++
	if d.n < SBUSFrameLen {
		return Frame{}, false
	}

	f, err := DecodeSBUS(d.buf[:], d.fullScale)
	if err == nil {
		d.n = 0
		return f, true
	}

	d.bad++
	// keep bytes from the next header candidate on
	d.n = 0
	for i := 1; i < SBUSFrameLen; i++ {
		if d.buf[i] == sbusHeader {
			d.n = copy(d.buf[:], d.buf[i:])
			break
		}
	}
	return Frame{}, false
}

// SBUS reads a serial SBUS receiver.
type SBUS struct {
	port io.ReadCloser
	clk  clock.Source
	dec  sbusDecoder
	q    *frameQueue
}

// OpenSBUS opens device at 100000 baud 8E2.
// Inverted-signal handling is the wiring's job.
func OpenSBUS(device string, fullScale uint16, clk clock.Source) (*SBUS, error) {
	if device == "" {
		return nil, errors.New("radio sbus: device required")
	}
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: sbusBaud,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.TwoStopBits,
	})
	if err != nil {
		return nil, fmt.Errorf("radio sbus: open %s: %w", device, err)
	}
	// bounded reads let Run observe ctx
	if err := p.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("radio sbus: read timeout %s: %w", device, err)
	}
	return NewSBUS(p, fullScale, clk)
}

// NewSBUS wraps an already-open byte stream.
func NewSBUS(port io.ReadCloser, fullScale uint16, clk clock.Source) (*SBUS, error) {
	if port == nil {
		return nil, errors.New("radio sbus: port required")
	}
	if clk == nil {
		return nil, errors.New("radio sbus: clock required")
	}
	q, err := newFrameQueue(8)
	if err != nil {
		return nil, err
	}
	return &SBUS{
		port: port,
		clk:  clk,
		dec:  sbusDecoder{fullScale: fullScale},
		q:    q,
	}, nil
}

// Run reads the port until ctx is done or the port fails.
func (s *SBUS) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := s.port.Read(buf)
		for _, b := range buf[:n] {
			if f, ok := s.dec.feed(b); ok {
				f.Millis = s.clk.Millis()
				s.q.publish(f)
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("radio sbus: read: %w", err)
		}
	}
}

func (s *SBUS) Latest() (Frame, bool) { return s.q.newest() }

func (s *SBUS) Close() error { return s.port.Close() }

// BadFrames counts frames dropped for a bad header or footer.
// Only meaningful after Run has returned.
func (s *SBUS) BadFrames() uint32 { return s.dec.bad }

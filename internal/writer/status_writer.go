// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/combat-controller/internal/status"
)

// StatusWriter is the delivery-only contract for controller status.
// It receives a snapshot and writes it verbatim.
type StatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull   bool
	last       []uint16
	bootIDRegs []uint16
}

// NewStatusWriter builds a writer for plan over cli.
func NewStatusWriter(plan StatusPlan, cli endpointClient) (*StatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	return &StatusWriter{
		plan:       plan,
		cli:        cli,
		needFull:   true, // full re-assert on first successful write
		bootIDRegs: status.EncodeBootID(plan.BootID),
	}, nil
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *StatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}

	regs := status.Encode(s)
	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		copy(regs[status.SlotBootIDStart:], sw.bootIDRegs)

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = append([]uint16(nil), regs[:status.LiveSlots]...)
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per contiguous run of changed slots,
	// so hi/lo pairs land together
	// ------------------------------------------------------------
	var errs []string

	for i := 0; i < status.LiveSlots; {
		if sw.last[i] == regs[i] {
			i++
			continue
		}
		j := i + 1
		for j < status.LiveSlots && sw.last[j] != regs[j] {
			j++
		}

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr+uint16(i), regs[i:j]); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d..%d write failed: %v", i, j-1, err))
		} else {
			copy(sw.last[i:j], regs[i:j])
		}
		i = j
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next write.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *StatusWriter) baseAddr() uint16 {
	// Each controller owns a fixed SlotsPerBlock block.
	return sw.plan.BaseSlot * status.SlotsPerBlock
}

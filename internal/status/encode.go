// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block.
// Boot id slots are left zero; the writer owns identity.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	if s.Armed {
		regs[SlotArmed] = 1
	}
	regs[SlotMaskHi] = uint16(s.Mask >> 16)
	regs[SlotMaskLo] = uint16(s.Mask)
	regs[SlotRepeatCount] = s.RepeatCount
	regs[SlotFlags] = s.Flags
	regs[SlotSkippedHi] = uint16(s.Skipped >> 16)
	regs[SlotSkippedLo] = uint16(s.Skipped)
	regs[SlotRPM] = uint16(s.RPM)
	regs[SlotFrequency] = uint16(s.Frequency)
	regs[SlotLogDrops] = s.LogDrops
	regs[SlotSecondsInFailsafe] = s.SecondsInFailsafe

	return regs
}

// EncodeBootID packs up to BootIDChars ASCII characters into SlotBootIDSlots
// registers. Each register stores two ASCII bytes in big-endian order.
func EncodeBootID(id string) []uint16 {
	out := make([]uint16, SlotBootIDSlots)

	b := []byte(id)
	if len(b) > BootIDChars {
		b = b[:BootIDChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < BootIDChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

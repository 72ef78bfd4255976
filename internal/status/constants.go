// internal/status/constants.go
package status

// Controller Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of logical slots per controller.
const SlotsPerBlock = 20

// ---- SLOT INDICES ----

// SlotArmed is 1 while actuators may be powered.
const SlotArmed = 0

// SlotMaskHi and SlotMaskLo hold the failsafe reason mask.
const (
	SlotMaskHi = 1
	SlotMaskLo = 2
)

// SlotRepeatCount holds failsafe entries since the last clean release.
const SlotRepeatCount = 3

// SlotFlags holds the forced re-arm latches (see Flag*).
const SlotFlags = 4

// SlotSkippedHi and SlotSkippedLo hold the encoder invalid-transition count.
const (
	SlotSkippedHi = 5
	SlotSkippedLo = 6
)

// SlotRPM holds output shaft speed as int16, saturated.
const SlotRPM = 7

// SlotFrequency holds encoder counts per second as int16, saturated.
const SlotFrequency = 8

// SlotLogDrops holds log records lost to a full buffer, saturated.
const SlotLogDrops = 9

// SlotSecondsInFailsafe holds how long the mask has been non-zero.
const SlotSecondsInFailsafe = 10

// ---- BOOT ID ----

// SlotBootIDStart is the first slot used for the boot id.
const SlotBootIDStart = 11

// SlotBootIDSlots is the number of slots reserved for the boot id.
const SlotBootIDSlots = 8

// SlotBootIDEnd is the last slot used for the boot id (inclusive).
const SlotBootIDEnd = SlotBootIDStart + SlotBootIDSlots - 1

// Slot 19 is reserved.

// BootIDChars is the number of ASCII characters stored for the boot id.
const BootIDChars = 16

// LiveSlots is the count of slots rewritten on incremental updates.
// The boot id is only written on a full block.
const LiveSlots = SlotBootIDStart

// ---- FLAGS ----

const (
	FlagRearmExpired  uint16 = 1 << 0
	FlagRepeatLockout uint16 = 1 << 1
)

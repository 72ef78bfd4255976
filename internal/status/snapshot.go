// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Armed             bool
	Mask              uint32
	RepeatCount       uint16
	Flags             uint16
	Skipped           uint32
	RPM               int16
	Frequency         int16
	LogDrops          uint16
	SecondsInFailsafe uint16
}

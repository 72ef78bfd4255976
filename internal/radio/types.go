// internal/radio/types.go
package radio

import "context"

// NumChannels is the number of proportional channels carried per frame.
const NumChannels = 16

// Channel is one raw RC channel reading.
// Value is meaningless unless Valid.
type Channel struct {
	Value uint16
	Valid bool
}

// Frame is one decoded receiver update.
type Frame struct {
	Channels  [NumChannels]Channel
	FrameLost bool
	Failsafe  bool
	// Millis is the clock reading when the frame was received.
	Millis int64
}

// Source delivers frames from a receiver.
// Run is the producer goroutine; Latest is called from the main loop only.
type Source interface {
	Run(ctx context.Context) error
	Latest() (Frame, bool)
	Close() error
}

// Scale maps a valid channel onto [min, max] with the range midpoint of
// [0, fullScale] landing on the midpoint of [min, max].
// Invalid channels map to the midpoint.
func (c Channel) Scale(fullScale uint16, min, max int16) int16 {
	mid := (int32(min) + int32(max)) / 2
	if !c.Valid || fullScale == 0 {
		return int16(mid)
	}
	v := int32(c.Value)
	if v > int32(fullScale) {
		v = int32(fullScale)
	}
	out := int32(min) + v*(int32(max)-int32(min))/int32(fullScale)
	return int16(out)
}

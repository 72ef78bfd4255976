// internal/radio/handoff.go
package radio

import "github.com/tamzrod/combat-controller/internal/ringbuf"

// frameQueue carries frames from a producer goroutine to the main loop.
type frameQueue struct {
	buf    *ringbuf.Buffer[Frame]
	latest Frame
	have   bool
}

func newFrameQueue(capacity int) (*frameQueue, error) {
	buf, err := ringbuf.New[Frame](capacity, true)
	if err != nil {
		return nil, err
	}
	return &frameQueue{buf: buf}, nil
}

// publish hands one frame to the consumer. A slow consumer loses the oldest
// frame, never the newest.
func (q *frameQueue) publish(f Frame) {
	slot := q.buf.Allocate()
	if slot == nil {
		q.buf.Push(f, true)
		return
	}
	*slot = f
	if !q.buf.Commit(slot) {
		q.buf.Push(f, true)
	}
}

// newest drains everything pending and keeps the most recent frame.
func (q *frameQueue) newest() (Frame, bool) {
	for q.buf.Available() {
		q.latest = q.buf.Pop()
		q.have = true
	}
	return q.latest, q.have
}

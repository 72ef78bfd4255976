// internal/ringbuf/buffer.go
package ringbuf

import (
	"errors"
	"sync"

	"golang.org/x/sys/cpu"
)

// SlotState tags one buffer entry.
// The only legal cycle is Available -> Allocated -> Committed -> Available.
type SlotState uint8

const (
	Available SlotState = iota
	Allocated
	Committed
)

func (s SlotState) String() string {
	switch s {
	case Available:
		return "available"
	case Allocated:
		return "allocated"
	case Committed:
		return "committed"
	default:
		return "invalid"
	}
}

type slot[T any] struct {
	state SlotState
	data  T
}

// Buffer is a bounded handoff queue of tagged slots.
//
// A producer reserves a slot (Allocate), fills it in place, and publishes it
// (Commit). A consumer only ever sees committed slots. Push does all three in
// one call.
//
// In locked mode every operation holds one mutex for its duration.
// In unlocked mode the caller serializes access: one producer touching the
// write side, one consumer touching the read side.
type Buffer[T any] struct {
	mu    *sync.Mutex
	slots []slot[T]

	_     cpu.CacheLinePad
	read  int
	_     cpu.CacheLinePad
	write int
	_     cpu.CacheLinePad

	zero T
}

// New creates a buffer with a fixed capacity.
// Capacity never changes for the buffer's lifetime.
func New[T any](capacity int, locked bool) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, errors.New("ringbuf: capacity must be > 0")
	}
	b := &Buffer[T]{
		slots: make([]slot[T], capacity),
	}
	if locked {
		b.mu = &sync.Mutex{}
	}
	return b, nil
}

// Cap returns the fixed slot count.
func (b *Buffer[T]) Cap() int { return len(b.slots) }

// Locked reports whether the buffer serializes its own operations.
func (b *Buffer[T]) Locked() bool { return b.mu != nil }

func (b *Buffer[T]) lock() {
	if b.mu != nil {
		b.mu.Lock()
	}
}

func (b *Buffer[T]) unlock() {
	if b.mu != nil {
		b.mu.Unlock()
	}
}

func (b *Buffer[T]) next(i int) int {
	i++
	if i == len(b.slots) {
		return 0
	}
	return i
}

// Allocate reserves the slot at the write index.
// Returns nil when that slot is not Available (buffer full, or a reservation
// is already outstanding). The returned pointer stays writable and unreadable
// until Commit.
func (b *Buffer[T]) Allocate() *T {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.write]
	if s.state != Available {
		return nil
	}
	s.state = Allocated
	return &s.data
}

// Commit publishes a slot obtained from Allocate and advances the write index.
// A pointer that is not the outstanding reservation is rejected without any
// mutation: stale pointers, duplicate commits, and pointers whose slot was
// overwritten by a forced Push all fail.
func (b *Buffer[T]) Commit(p *T) bool {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.write]
	if p == nil || p != &s.data || s.state != Allocated {
		return false
	}
	s.state = Committed
	b.write = b.next(b.write)
	return true
}

// Push copies item into the next slot and commits it.
//
// When the write slot is not Available, Push fails unless force is set.
// Forced pushes are lossy by design:
//   - over a Committed slot the buffer is full, so the oldest unread entry is
//     dropped and the read index moves past it;
//   - over an Allocated slot the producer's half-written entry is replaced and
//     its pending Commit will fail.
func (b *Buffer[T]) Push(item T, force bool) bool {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.write]
	switch s.state {
	case Available:
	case Allocated:
		if !force {
			return false
		}
	case Committed:
		if !force {
			return false
		}
		if b.read == b.write {
			b.read = b.next(b.read)
		}
	}

	s.data = item
	s.state = Committed
	b.write = b.next(b.write)
	return true
}

// Available reports whether a committed entry is waiting at the read index.
func (b *Buffer[T]) Available() bool {
	b.lock()
	defer b.unlock()
	return b.slots[b.read].state == Committed
}

// Pop removes and returns the next committed entry.
// On an empty buffer it returns the zero value and changes nothing.
func (b *Buffer[T]) Pop() T {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.read]
	if s.state != Committed {
		return b.zero
	}
	v := s.data
	s.state = Available
	b.read = b.next(b.read)
	return v
}

// PopVoid frees the next committed entry without copying it out.
// No-op when empty.
func (b *Buffer[T]) PopVoid() {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.read]
	if s.state != Committed {
		return
	}
	s.state = Available
	b.read = b.next(b.read)
}

// PeekPtr returns the next committed entry without freeing it, or nil.
// The data stays valid until the next Pop or PopVoid, or until a forced Push
// on a full buffer overwrites the slot.
func (b *Buffer[T]) PeekPtr() *T {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.read]
	if s.state != Committed {
		return nil
	}
	return &s.data
}

// Peek returns a copy of the next committed entry, or the zero value.
func (b *Buffer[T]) Peek() T {
	b.lock()
	defer b.unlock()

	s := &b.slots[b.read]
	if s.state != Committed {
		return b.zero
	}
	return s.data
}

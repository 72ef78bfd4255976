// internal/logger/logger.go
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tamzrod/combat-controller/internal/clock"
	"github.com/tamzrod/combat-controller/internal/ringbuf"
)

// Level orders records by severity. Lower is more severe.
type Level uint8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "LEVEL?"
	}
}

// ParseLevel accepts error, warn, info, debug (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("logger: unknown level %q", s)
	}
}

// MaxText bounds the text carried by one record.
const MaxText = 96

// Record is one log entry as it sits in the buffer.
type Record struct {
	Millis int64
	Level  Level
	Key    string
	Len    uint8
	Text   [MaxText]byte
}

func (r *Record) String() string {
	return string(r.Text[:r.Len])
}

// Logger buffers records from any goroutine and writes them out when the
// main loop calls Drain. A nil *Logger discards everything.
type Logger struct {
	buf   *ringbuf.Buffer[Record]
	clk   clock.Source
	level Level
	out   *log.Logger
	drops atomic.Uint32

	// one outstanding reservation at a time
	produce sync.Mutex
}

// New creates a logger with a fixed number of buffered records.
// prefix goes in front of every written line.
func New(capacity int, level Level, clk clock.Source, sink io.Writer, prefix string) (*Logger, error) {
	if clk == nil {
		return nil, errors.New("logger: clock required")
	}
	if sink == nil {
		return nil, errors.New("logger: sink required")
	}
	buf, err := ringbuf.New[Record](capacity, true)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &Logger{
		buf:   buf,
		clk:   clk,
		level: level,
		out:   log.New(sink, prefix, log.LstdFlags),
	}, nil
}

// Printf reserves a slot, formats into it and commits. Never blocks on the
// sink. When the buffer is full the oldest record is dropped.
func (l *Logger) Printf(key string, level Level, format string, args ...any) {
	if l == nil || level > l.level {
		return
	}
	ms := l.clk.Millis()
	text := fmt.Sprintf(format, args...)

	l.produce.Lock()
	defer l.produce.Unlock()

	if rec := l.buf.Allocate(); rec != nil {
		fill(rec, ms, level, key, text)
		if l.buf.Commit(rec) {
			return
		}
	}

	l.drops.Add(1)
	var rec Record
	fill(&rec, ms, level, key, text)
	l.buf.Push(rec, true)
}

func fill(rec *Record, ms int64, level Level, key, text string) {
	rec.Millis = ms
	rec.Level = level
	rec.Key = key
	rec.Len = uint8(copy(rec.Text[:], truncate(text, MaxText)))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (l *Logger) Error(key, format string, args ...any) { l.Printf(key, LevelError, format, args...) }
func (l *Logger) Warn(key, format string, args ...any)  { l.Printf(key, LevelWarn, format, args...) }
func (l *Logger) Info(key, format string, args ...any)  { l.Printf(key, LevelInfo, format, args...) }
func (l *Logger) Debug(key, format string, args ...any) { l.Printf(key, LevelDebug, format, args...) }

// Drain writes up to max buffered records to the sink and returns how many
// were written. max <= 0 drains everything currently buffered.
func (l *Logger) Drain(max int) int {
	if l == nil {
		return 0
	}
	n := 0
	for max <= 0 || n < max {
		// copy out under the buffer lock; a forced push may reuse the slot
		if !l.buf.Available() {
			break
		}
		rec := l.buf.Pop()
		l.out.Printf("[%d] %s %s: %s", rec.Millis, rec.Level, rec.Key, rec.String())
		n++
	}
	return n
}

// Drops returns how many records were overwritten before being drained.
func (l *Logger) Drops() uint32 {
	if l == nil {
		return 0
	}
	return l.drops.Load()
}

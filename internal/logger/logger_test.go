// internal/logger/logger_test.go
package logger

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/combat-controller/internal/clock"
)

func newLogger(t *testing.T, capacity int, level Level) (*Logger, *bytes.Buffer, *clock.Manual) {
	t.Helper()
	var out bytes.Buffer
	clk := &clock.Manual{}
	l, err := New(capacity, level, clk, &out, "")
	require.NoError(t, err)
	return l, &out, clk
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"error": LevelError,
		"WARN":  LevelWarn,
		"info":  LevelInfo,
		"":      LevelInfo,
		"Debug": LevelDebug,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestPrintf_BufferedUntilDrain(t *testing.T) {
	l, out, clk := newLogger(t, 4, LevelInfo)

	clk.Set(1234)
	l.Info("encoder", "rpm=%d", 3000)
	assert.Zero(t, out.Len(), "nothing is written before Drain")

	assert.Equal(t, 1, l.Drain(0))
	line := out.String()
	assert.Contains(t, line, "[1234] INFO encoder: rpm=3000")
}

func TestPrintf_LevelFilter(t *testing.T) {
	l, out, _ := newLogger(t, 4, LevelWarn)

	l.Debug("k", "dropped")
	l.Info("k", "dropped")
	l.Warn("k", "kept")
	l.Error("k", "kept too")

	assert.Equal(t, 2, l.Drain(0))
	assert.NotContains(t, out.String(), "dropped")
}

func TestPrintf_FullDropsOldest(t *testing.T) {
	l, out, _ := newLogger(t, 2, LevelDebug)

	l.Info("k", "one")
	l.Info("k", "two")
	l.Info("k", "three")

	assert.Equal(t, uint32(1), l.Drops())
	assert.Equal(t, 2, l.Drain(0))
	s := out.String()
	assert.NotContains(t, s, "one")
	assert.True(t, strings.Index(s, "two") < strings.Index(s, "three"))
}

func TestPrintf_TruncatesText(t *testing.T) {
	l, out, _ := newLogger(t, 1, LevelInfo)

	l.Info("k", "%s", strings.Repeat("x", MaxText*2))
	l.Drain(0)
	assert.Equal(t, 1, strings.Count(out.String(), strings.Repeat("x", MaxText)))
	assert.NotContains(t, out.String(), strings.Repeat("x", MaxText+1))
}

func TestPrintf_TruncatesOnRuneBoundary(t *testing.T) {
	l, out, _ := newLogger(t, 1, LevelInfo)

	// the two-byte rune straddles the record limit
	msg := strings.Repeat("x", MaxText-1) + "é"
	l.Info("k", "%s", msg)
	l.Drain(0)

	line := strings.TrimSuffix(out.String(), "\n")
	assert.True(t, utf8.ValidString(line), "split rune in %q", line)
	assert.True(t, strings.HasSuffix(line, ": "+strings.Repeat("x", MaxText-1)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("aé", 2))
	assert.Equal(t, "aé", truncate("aé", 3))
	assert.Equal(t, "", truncate("日本", 2))
}

func TestPrintf_CommitsReservedSlot(t *testing.T) {
	l, out, _ := newLogger(t, 2, LevelInfo)

	l.Info("k", "first")
	assert.Zero(t, l.Drops())
	assert.Equal(t, 1, l.Drain(0))
	assert.Contains(t, out.String(), "k: first")

	// the buffer is reusable after a drain, so reservations keep succeeding
	l.Info("k", "second")
	l.Info("k", "third")
	assert.Zero(t, l.Drops())
	assert.Equal(t, 2, l.Drain(0))
}

func TestDrain_Max(t *testing.T) {
	l, _, _ := newLogger(t, 8, LevelInfo)
	for i := 0; i < 5; i++ {
		l.Info("k", "n=%d", i)
	}
	assert.Equal(t, 3, l.Drain(3))
	assert.Equal(t, 2, l.Drain(0))
	assert.Equal(t, 0, l.Drain(0))
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Info("k", "ignored")
	assert.Equal(t, 0, l.Drain(0))
	assert.Zero(t, l.Drops())
}

package entry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/logpipe/redact"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 45, 123_000_000, time.UTC)

func TestFormatPersistedPrefix(t *testing.T) {
	console, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelInfo,
		Caller:    "checkout",
		Line:      42,
		Message:   "order placed",
	})

	assert.Equal(t, "ℹ️ [checkout:42] order placed", console)
	assert.Equal(t, "[2025-01-15 10:30:45.123] 1 ℹ️ [checkout:42] order placed", persisted)
}

func TestFormatWithoutLineNumber(t *testing.T) {
	console, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelWarn,
		Caller:    "billing",
		Message:   "retrying",
	})

	assert.Equal(t, "⚠️ [billing] retrying", console)
	assert.True(t, strings.HasSuffix(persisted, "2 ⚠️ [billing] retrying"))
}

func TestFormatMetadataOrder(t *testing.T) {
	meta := []Field{
		F("user_id", 123),
		F("action", "login"),
		F("ok", true),
	}
	console, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelInfo,
		Caller:    "auth",
		Message:   "attempt",
		Meta:      meta,
	})

	// Metadata is appended to both channels identically, insertion order
	want := " | user_id=123, action=login, ok=true"
	assert.True(t, strings.HasSuffix(console, want))
	assert.True(t, strings.HasSuffix(persisted, want))
}

func TestFormatMetadataComplexValue(t *testing.T) {
	type payload struct {
		ID   int
		Name string
	}
	_, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelInfo,
		Caller:    "api",
		Message:   "received",
		Meta:      []Field{F("body", payload{ID: 7, Name: "x"})},
	})

	assert.Contains(t, persisted, "body=")
	assert.Contains(t, persisted, "ID:")
}

func TestFormatDualChannelRedaction(t *testing.T) {
	m := redact.Mark("secret123", "[HIDDEN]")
	console, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelInfo,
		Caller:    "auth",
		Message:   "using " + m.String(),
	})

	assert.Contains(t, console, "secret123")
	assert.Contains(t, persisted, "[HIDDEN]")
	assert.NotContains(t, persisted, "secret123")
}

func TestFormatAutomaticScanPersistedOnly(t *testing.T) {
	console, persisted := Format(Event{
		Timestamp: testTime,
		Level:     LevelError,
		Caller:    "mailer",
		Message:   "bounce for user@example.com",
	})

	// Console keeps fully-resolved plaintext; only the persisted channel
	// is scanned
	assert.Contains(t, console, "user@example.com")
	assert.Contains(t, persisted, redact.PlaceholderEmail)
	assert.NotContains(t, persisted, "user@example.com")
}

func TestFormatStackBlock(t *testing.T) {
	stack := "    at main.run (main.go:10)\n    at main.main (main.go:4)"

	t.Run("error level appends to both channels", func(t *testing.T) {
		console, persisted := Format(Event{
			Timestamp: testTime,
			Level:     LevelError,
			Caller:    "worker",
			Message:   "boom",
			Stack:     stack,
		})
		assert.Contains(t, console, stack)
		assert.Contains(t, persisted, stack)
	})

	t.Run("info level drops the block", func(t *testing.T) {
		console, persisted := Format(Event{
			Timestamp: testTime,
			Level:     LevelInfo,
			Caller:    "worker",
			Message:   "fine",
			Stack:     stack,
		})
		assert.NotContains(t, console, "at main.run")
		assert.NotContains(t, persisted, "at main.run")
	})
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical} {
		t.Run(level.String(), func(t *testing.T) {
			_, persisted := Format(Event{
				Timestamp: testTime,
				Level:     level,
				Caller:    "inventory",
				Line:      77,
				Message:   "stock updated",
				Meta:      []Field{F("sku", "A-1")},
			})

			parsed, ok := Parse(persisted)
			require.True(t, ok)
			assert.Equal(t, level, parsed.Level)
			assert.Equal(t, "inventory", parsed.Caller)
			assert.Equal(t, 77, parsed.Line)
			assert.Equal(t, "stock updated", parsed.Message)
			assert.True(t, parsed.Timestamp.Equal(testTime))
			require.Len(t, parsed.Meta, 1)
			assert.Equal(t, "sku", parsed.Meta[0].Key)
			assert.Equal(t, "A-1", parsed.Meta[0].Value)
		})
	}
}

func TestLevelTable(t *testing.T) {
	assert.Equal(t, "warning", LevelWarn.String())
	assert.Equal(t, "critical", LevelCritical.String())
	assert.True(t, LevelDebug < LevelCritical)

	// Sink severities invert the internal ranks (syslog convention)
	assert.Greater(t, LevelDebug.SinkSeverity(), LevelCritical.SinkSeverity())

	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical} {
		assert.NotEmpty(t, l.Glyph())
		assert.True(t, l.Valid())
	}
	assert.False(t, Level(9).Valid())
}

func TestParseLevelTokens(t *testing.T) {
	tests := []struct {
		token string
		want  Level
		ok    bool
	}{
		{"0", LevelDebug, true},
		{"4", LevelCritical, true},
		{"debug", LevelDebug, true},
		{"WARNING", LevelWarn, true},
		{"warn", LevelWarn, true},
		{"Critical", LevelCritical, true},
		{"5", 0, false},
		{"-1", 0, false},
		{"verbose", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.token)
		assert.Equal(t, tt.ok, ok, "token %q", tt.token)
		if tt.ok {
			assert.Equal(t, tt.want, got, "token %q", tt.token)
		}
	}
}

package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		want Entry
	}{
		{
			name: "caller with line number",
			line: "[2025-01-15 10:30:45.123] 1 ℹ️ [checkout:42] order placed",
			ok:   true,
			want: Entry{Level: LevelInfo, Caller: "checkout", Line: 42, Message: "order placed"},
		},
		{
			name: "caller without line number",
			line: "[2025-01-15 10:30:45.123] 3 ❌ [billing] charge failed",
			ok:   true,
			want: Entry{Level: LevelError, Caller: "billing", Message: "charge failed"},
		},
		{
			name: "level by name",
			line: "[2025-01-15 10:30:45.123] WARNING ⚠️ [gc] heap pressure",
			ok:   true,
			want: Entry{Level: LevelWarn, Caller: "gc", Message: "heap pressure"},
		},
		{
			name: "metadata tail",
			line: "[2025-01-15 10:30:45.123] 0 🔍 [auth:9] probe | user=bob, attempt=2",
			ok:   true,
			want: Entry{
				Level: LevelDebug, Caller: "auth", Line: 9, Message: "probe",
				Meta: []Field{{Key: "user", Value: "bob"}, {Key: "attempt", Value: "2"}},
			},
		},
		{
			name: "empty message",
			line: "[2025-01-15 10:30:45.123] 4 🔥 [main] ",
			ok:   true,
			want: Entry{Level: LevelCritical, Caller: "main", Message: ""},
		},
		{
			name: "bad timestamp digits",
			line: "[2025-1-15 10:30:45.123] 1 ℹ️ [checkout] x",
		},
		{
			name: "timestamp without millis",
			line: "[2025-01-15 10:30:45] 1 ℹ️ [checkout] x",
		},
		{
			name: "level rank out of range",
			line: "[2025-01-15 10:30:45.123] 7 ℹ️ [checkout] x",
		},
		{
			name: "unknown level name",
			line: "[2025-01-15 10:30:45.123] verbose ℹ️ [checkout] x",
		},
		{
			name: "stack continuation line",
			line: "    at main.run (main.go:10)",
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "free-form text",
			line: "not a log line at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.line)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want.Level, got.Level)
			assert.Equal(t, tt.want.Caller, got.Caller)
			assert.Equal(t, tt.want.Line, got.Line)
			assert.Equal(t, tt.want.Message, got.Message)
			assert.Equal(t, tt.want.Meta, got.Meta)
			assert.Equal(t, 2025, got.Timestamp.Year())
		})
	}
}

func TestParseMessageContainingPipe(t *testing.T) {
	// A " | " inside the message is only treated as a metadata separator
	// when everything after the last occurrence splits into k=v pairs.
	got, ok := Parse("[2025-01-15 10:30:45.123] 1 ℹ️ [sh] cmd: ls | wc -l")
	require.True(t, ok)
	assert.Equal(t, "cmd: ls | wc -l", got.Message)
	assert.Nil(t, got.Meta)
}

func TestParseCallerWithNonNumericSuffix(t *testing.T) {
	got, ok := Parse("[2025-01-15 10:30:45.123] 1 ℹ️ [pkg:sub] msg")
	require.True(t, ok)
	assert.Equal(t, "pkg:sub", got.Caller)
	assert.Equal(t, 0, got.Line)
}

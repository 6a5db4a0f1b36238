package entry

import (
	"strconv"
	"strings"
)

// Level is the severity rank of a log event. Ranks are totally ordered and
// stable: they appear verbatim in persisted lines.
type Level int64

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

var levelNames = [...]string{
	LevelDebug:    "debug",
	LevelInfo:     "info",
	LevelWarn:     "warning",
	LevelError:    "error",
	LevelCritical: "critical",
}

var levelGlyphs = [...]string{
	LevelDebug:    "🔍",
	LevelInfo:     "ℹ️",
	LevelWarn:     "⚠️",
	LevelError:    "❌",
	LevelCritical: "🔥",
}

// Sink severity ranks follow the syslog convention used by system consoles
var sinkSeverities = [...]int{
	LevelDebug:    7,
	LevelInfo:     6,
	LevelWarn:     4,
	LevelError:    3,
	LevelCritical: 2,
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelCritical
}

// String returns the lowercase level name, or the numeric rank for
// out-of-range values.
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return strconv.FormatInt(int64(l), 10)
}

// Glyph returns the fixed display glyph for the level.
func (l Level) Glyph() string {
	if l.Valid() {
		return levelGlyphs[l]
	}
	return "•"
}

// SinkSeverity returns the severity rank handed to the external console sink.
func (l Level) SinkSeverity() int {
	if l.Valid() {
		return sinkSeverities[l]
	}
	return 6
}

// ParseLevel accepts either a numeric rank or a level name,
// case-insensitively. "warn" is accepted as a shorthand for "warning".
func ParseLevel(token string) (Level, bool) {
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		l := Level(n)
		return l, l.Valid()
	}
	switch strings.ToLower(token) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	}
	return 0, false
}

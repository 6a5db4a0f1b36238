package logpipe

import (
	"time"

	"github.com/lixenwraith/logpipe/entry"
)

// Level and the level constants are re-exported from entry so callers of
// the pipeline never need to import the entry package directly.
type Level = entry.Level

const (
	LevelDebug    = entry.LevelDebug
	LevelInfo     = entry.LevelInfo
	LevelWarn     = entry.LevelWarn
	LevelError    = entry.LevelError
	LevelCritical = entry.LevelCritical
)

// Field is one metadata key-value pair, re-exported from entry.
type Field = entry.Field

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return entry.F(key, value)
}

const (
	// Minimum wait time used for polling loops throughout the package
	minWaitTime = 10 * time.Millisecond

	// Size multiplier for the KB-based rotation cap
	sizeMultiplierKB = 1024

	// Frames belonging to the pipeline itself, excluded from stack blocks
	stackSkipFrames = 2
)

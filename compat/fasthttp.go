// Package compat provides adapters that let external frameworks log
// through a logpipe.Pipeline.
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/logpipe"
)

// FastHTTPAdapter wraps logpipe.Pipeline to implement fasthttp's Logger interface
type FastHTTPAdapter struct {
	pipeline      *logpipe.Pipeline
	defaultLevel  logpipe.Level
	levelDetector func(string) (logpipe.Level, bool) // Detect log level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(pipeline *logpipe.Pipeline, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		pipeline:      pipeline,
		defaultLevel:  logpipe.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the default log level for Printf calls
func WithDefaultLevel(level logpipe.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (logpipe.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.pipeline.Log(level, msg, []logpipe.Field{logpipe.F("source", "fasthttp")}, false)
}

// DetectLogLevel attempts to detect the log level from message content
func DetectLogLevel(msg string) (logpipe.Level, bool) {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "panic") ||
		strings.Contains(msgLower, "fatal") {
		return logpipe.LevelCritical, true
	}

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") {
		return logpipe.LevelError, true
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return logpipe.LevelWarn, true
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return logpipe.LevelDebug, true
	}

	return logpipe.LevelInfo, false
}

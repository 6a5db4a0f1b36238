package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/logpipe"
)

// GnetAdapter wraps logpipe.Pipeline to implement gnet's logging.Logger interface
type GnetAdapter struct {
	pipeline     *logpipe.Pipeline
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(pipeline *logpipe.Pipeline, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		pipeline: pipeline,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

func (a *GnetAdapter) source() []logpipe.Field {
	return []logpipe.Field{logpipe.F("source", "gnet")}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.pipeline.Log(logpipe.LevelDebug, fmt.Sprintf(format, args...), a.source(), false)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.pipeline.Log(logpipe.LevelInfo, fmt.Sprintf(format, args...), a.source(), false)
}

// Warnf logs at warning level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.pipeline.Log(logpipe.LevelWarn, fmt.Sprintf(format, args...), a.source(), false)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.pipeline.Log(logpipe.LevelError, fmt.Sprintf(format, args...), a.source(), false)
}

// Fatalf logs at critical level and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.pipeline.Log(logpipe.LevelCritical, msg, a.source(), true)

	// Ensure the line is durable before exit
	_ = a.pipeline.ForceFlush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

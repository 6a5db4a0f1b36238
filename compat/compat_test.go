package compat

import (
	"testing"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logpipe"
)

// Compile-time checks that the adapters satisfy the framework interfaces
var (
	_ fasthttp.Logger = (*FastHTTPAdapter)(nil)
	_ logging.Logger  = (*GnetAdapter)(nil)
)

func createTestPipeline(t *testing.T) *logpipe.Pipeline {
	t.Helper()

	p, err := logpipe.NewBuilder().
		Directory(t.TempDir()).
		Name("compat").
		Level(logpipe.LevelDebug).
		EnableConsole(false).
		FlushThreshold(1).
		FlushInterval(50).
		Build()
	require.NoError(t, err)
	require.NoError(t, p.Start())

	t.Cleanup(func() { _ = p.Shutdown(time.Second) })
	return p
}

func TestFastHTTPAdapterPrintf(t *testing.T) {
	p := createTestPipeline(t)
	adapter := NewFastHTTPAdapter(p)

	adapter.Printf("serving %s on %d", "example.com", 8080)
	adapter.Printf("error when serving connection")
	require.NoError(t, p.ForceFlush(time.Second))

	entries := p.RecentEntries(0)
	require.Len(t, entries, 2)

	assert.Equal(t, logpipe.LevelInfo, entries[0].Level)
	assert.Equal(t, "serving example.com on 8080", entries[0].Message)
	require.Len(t, entries[0].Meta, 1)
	assert.Equal(t, "fasthttp", entries[0].Meta[0].Value)

	// Level detection picks the error level from the message text
	assert.Equal(t, logpipe.LevelError, entries[1].Level)
}

func TestFastHTTPAdapterDefaultLevel(t *testing.T) {
	p := createTestPipeline(t)
	adapter := NewFastHTTPAdapter(p,
		WithDefaultLevel(logpipe.LevelWarn),
		WithLevelDetector(nil),
	)

	adapter.Printf("plain message")
	require.NoError(t, p.ForceFlush(time.Second))

	entries := p.RecentEntries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, logpipe.LevelWarn, entries[0].Level)
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg   string
		want  logpipe.Level
		found bool
	}{
		{"panic: something broke", logpipe.LevelCritical, true},
		{"fatal shutdown", logpipe.LevelCritical, true},
		{"ERROR when serving", logpipe.LevelError, true},
		{"request failed", logpipe.LevelError, true},
		{"warning: deprecated API", logpipe.LevelWarn, true},
		{"debug dump follows", logpipe.LevelDebug, true},
		{"serving requests", logpipe.LevelInfo, false},
	}

	for _, tt := range tests {
		got, found := DetectLogLevel(tt.msg)
		assert.Equal(t, tt.want, got, "msg %q", tt.msg)
		assert.Equal(t, tt.found, found, "msg %q", tt.msg)
	}
}

func TestGnetAdapterLevels(t *testing.T) {
	p := createTestPipeline(t)
	adapter := NewGnetAdapter(p)

	adapter.Debugf("conn %d opened", 1)
	adapter.Infof("listening on %s", ":9000")
	adapter.Warnf("slow reactor")
	adapter.Errorf("accept failed")
	require.NoError(t, p.ForceFlush(time.Second))

	entries := p.RecentEntries(0)
	require.Len(t, entries, 4)
	assert.Equal(t, logpipe.LevelDebug, entries[0].Level)
	assert.Equal(t, "conn 1 opened", entries[0].Message)
	assert.Equal(t, logpipe.LevelInfo, entries[1].Level)
	assert.Equal(t, logpipe.LevelWarn, entries[2].Level)
	assert.Equal(t, logpipe.LevelError, entries[3].Level)

	for _, e := range entries {
		require.Len(t, e.Meta, 1)
		assert.Equal(t, "gnet", e.Meta[0].Value)
	}
}

func TestGnetAdapterFatalf(t *testing.T) {
	p := createTestPipeline(t)

	var fatalMsg string
	adapter := NewGnetAdapter(p, WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))

	adapter.Fatalf("event loop died: %v", "poll error")

	// Fatalf flushes before invoking the handler, so the line is already
	// durable here
	assert.Equal(t, "event loop died: poll error", fatalMsg)

	entries := p.RecentEntries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, logpipe.LevelCritical, entries[0].Level)
	assert.Equal(t, "event loop died: poll error", entries[0].Message)
}

package logpipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, int64(LevelInfo), cfg.Level)
	assert.Equal(t, "pipeline", cfg.Name)
	assert.Equal(t, "log", cfg.Extension)
	assert.Equal(t, int64(1024), cfg.BufferSize)
	assert.Equal(t, int64(25), cfg.FlushThreshold)
	assert.Equal(t, int64(5000), cfg.FlushIntervalMs)
	assert.Equal(t, int64(5*1024), cfg.MaxSizeKB)
	assert.Equal(t, int64(5), cfg.MaxGenerations)
	assert.True(t, cfg.EnableConsole)
	assert.Equal(t, "stdout", cfg.ConsoleTarget)

	require.NoError(t, cfg.validate())

	// Each call returns an independent copy
	cfg.Name = "mutated"
	assert.Equal(t, "pipeline", DefaultConfig().Name)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "  " }},
		{"extension with dot", func(c *Config) { c.Extension = ".log" }},
		{"bad console target", func(c *Config) { c.ConsoleTarget = "syslog" }},
		{"level rank too high", func(c *Config) { c.Level = 5 }},
		{"negative level rank", func(c *Config) { c.Level = -1 }},
		{"zero buffer size", func(c *Config) { c.BufferSize = 0 }},
		{"zero flush threshold", func(c *Config) { c.FlushThreshold = 0 }},
		{"zero flush interval", func(c *Config) { c.FlushIntervalMs = 0 }},
		{"negative max size", func(c *Config) { c.MaxSizeKB = -1 }},
		{"zero generations", func(c *Config) { c.MaxGenerations = 0 }},
		{"zero stack frames", func(c *Config) { c.MaxStackFrames = 0 }},
		{"excessive stack frames", func(c *Config) { c.MaxStackFrames = 65 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"level":           int64(LevelDebug),
		"name":            "audit",
		"flush_threshold": 50,
		"enable_console":  false,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(LevelDebug), cfg.Level)
	assert.Equal(t, "audit", cfg.Name)
	assert.Equal(t, int64(50), cfg.FlushThreshold)
	assert.False(t, cfg.EnableConsole)
	// Untouched keys keep their defaults
	assert.Equal(t, int64(5000), cfg.FlushIntervalMs)
}

func TestNewConfigFromDefaultsRejectsBadInput(t *testing.T) {
	_, err := NewConfigFromDefaults(map[string]any{"no_such_key": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"name": 42})
	assert.Error(t, err)

	// Overrides that produce an invalid config fail validation
	_, err = NewConfigFromDefaults(map[string]any{"buffer_size": 0})
	assert.Error(t, err)
}

func TestNewConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logpipe.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logpipe]
level = 0
name = "fromfile"
flush_threshold = 7
enable_console = false
`), 0644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(LevelDebug), cfg.Level)
	assert.Equal(t, "fromfile", cfg.Name)
	assert.Equal(t, int64(7), cfg.FlushThreshold)
	assert.False(t, cfg.EnableConsole)
}

func TestNewConfigFromFileMissingUsesDefaults(t *testing.T) {
	cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "pipeline", cfg.Name)
}

func TestConfigClone(t *testing.T) {
	orig := DefaultConfig()
	clone := orig.Clone()
	clone.Name = "changed"
	clone.MaxSizeKB = 1

	assert.Equal(t, "pipeline", orig.Name)
	assert.Equal(t, int64(5*1024), orig.MaxSizeKB)
}

func TestConfigRequiresRestart(t *testing.T) {
	a := DefaultConfig()

	b := a.Clone()
	b.Level = int64(LevelDebug)
	b.EnableConsole = false
	assert.False(t, configRequiresRestart(a, b))

	c := a.Clone()
	c.BufferSize = 2048
	assert.True(t, configRequiresRestart(a, c))

	d := a.Clone()
	d.Directory = "/elsewhere"
	assert.True(t, configRequiresRestart(a, d))
}

func TestApplyOverride(t *testing.T) {
	p := New()
	require.NoError(t, p.ApplyOverride(
		"directory="+t.TempDir(),
		"level=debug",
		"flush_threshold=50",
		"enable_console=false",
	))
	t.Cleanup(func() { _ = p.Shutdown() })

	cfg := p.GetConfig()
	assert.Equal(t, int64(LevelDebug), cfg.Level)
	assert.Equal(t, int64(50), cfg.FlushThreshold)
	assert.False(t, cfg.EnableConsole)
	assert.Equal(t, LevelDebug, p.MinLevel())
}

func TestApplyOverrideNumericLevel(t *testing.T) {
	p := New()
	require.NoError(t, p.ApplyOverride("directory="+t.TempDir(), "level=4"))
	t.Cleanup(func() { _ = p.Shutdown() })

	assert.Equal(t, int64(LevelCritical), p.GetConfig().Level)
}

func TestApplyOverrideErrors(t *testing.T) {
	p := New()

	assert.Error(t, p.ApplyOverride("no_such_key=1"))
	assert.Error(t, p.ApplyOverride("flush_threshold=lots"))
	assert.Error(t, p.ApplyOverride("level=verbose"))
	assert.Error(t, p.ApplyOverride("not-a-pair"))
	assert.Error(t, p.ApplyOverride("=value"))

	err := p.ApplyOverride("no_such_key=1", "level=verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple configuration errors")

	// Failed overrides leave the live config untouched
	assert.Equal(t, "pipeline", p.GetConfig().Name)
}

func TestApplyConfigRejectsInvalid(t *testing.T) {
	p := New()
	assert.Error(t, p.ApplyConfig(nil))

	bad := DefaultConfig()
	bad.Name = ""
	assert.Error(t, p.ApplyConfig(bad))
}

func TestParseKeyValue(t *testing.T) {
	k, v, err := parseKeyValue(" level = debug ")
	require.NoError(t, err)
	assert.Equal(t, "level", k)
	assert.Equal(t, "debug", v)

	k, v, err = parseKeyValue("name=a=b")
	require.NoError(t, err)
	assert.Equal(t, "name", k)
	assert.Equal(t, "a=b", v)

	_, _, err = parseKeyValue("bare")
	assert.Error(t, err)

	_, _, err = parseKeyValue("=x")
	assert.Error(t, err)
}

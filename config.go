package logpipe

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all pipeline configuration values
type Config struct {
	// Basic settings
	Level     int64  `toml:"level"`     // Minimum level rank admitted by the façade
	Name      string `toml:"name"`      // Base name for the generation files
	Directory string `toml:"directory"` //
	Extension string `toml:"extension"` //

	// Buffering and flush scheduling
	BufferSize      int64 `toml:"buffer_size"`       // Writer queue capacity
	FlushThreshold  int64 `toml:"flush_threshold"`   // Buffered lines that trigger a flush
	FlushIntervalMs int64 `toml:"flush_interval_ms"` // Max age of a non-empty buffer

	// Rotation
	MaxSizeKB      int64 `toml:"max_size_kb"`     // Size cap of the current generation
	MaxGenerations int64 `toml:"max_generations"` // Highest archive suffix kept

	// Console sink
	EnableConsole bool   `toml:"enable_console"` // Forward unredacted copies to the sink
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"

	// Stack traces
	MaxStackFrames int64 `toml:"max_stack_frames"` // Frame bound for trace blocks

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Report pipeline faults to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:     int64(LevelInfo),
	Name:      "pipeline",
	Directory: "./logs",
	Extension: "log",

	BufferSize:      1024,
	FlushThreshold:  25,
	FlushIntervalMs: 5000,

	MaxSizeKB:      5 * 1024,
	MaxGenerations: 5,

	EnableConsole: true,
	ConsoleTarget: "stdout",

	MaxStackFrames: 16,

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("logpipe.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, "logpipe.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		key := prefix + tomlTag

		val, found := loader.Get(key)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmtErrorf("name cannot be empty")
	}

	if strings.HasPrefix(c.Extension, ".") {
		return fmtErrorf("extension should not start with dot: %s", c.Extension)
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if !Level(c.Level).Valid() {
		return fmtErrorf("invalid level rank: %d (use 0..4)", c.Level)
	}

	if c.BufferSize <= 0 {
		return fmtErrorf("buffer_size must be positive: %d", c.BufferSize)
	}

	if c.FlushThreshold <= 0 {
		return fmtErrorf("flush_threshold must be positive: %d", c.FlushThreshold)
	}

	if c.FlushIntervalMs <= 0 {
		return fmtErrorf("flush_interval_ms must be positive: %d", c.FlushIntervalMs)
	}

	if c.MaxSizeKB < 0 {
		return fmtErrorf("max_size_kb cannot be negative: %d", c.MaxSizeKB)
	}

	if c.MaxGenerations < 1 {
		return fmtErrorf("max_generations must be at least 1: %d", c.MaxGenerations)
	}

	if c.MaxStackFrames < 1 || c.MaxStackFrames > 64 {
		return fmtErrorf("max_stack_frames must be between 1 and 64: %d", c.MaxStackFrames)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// configRequiresRestart reports whether changing from old to new needs the
// writer goroutine restarted (queue capacity and timer settings are read
// once at start).
func configRequiresRestart(old, new *Config) bool {
	return old.BufferSize != new.BufferSize ||
		old.FlushThreshold != new.FlushThreshold ||
		old.FlushIntervalMs != new.FlushIntervalMs ||
		old.Directory != new.Directory ||
		old.Name != new.Name ||
		old.Extension != new.Extension
}

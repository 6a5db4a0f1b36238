package logpipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/logpipe/entry"
)

// ApplyOverride applies string key-value overrides to the pipeline's
// current configuration. Each override should be in the format "key=value".
// The configuration is cloned before modification.
//
// Example:
//
//	p := logpipe.New()
//	err := p.ApplyOverride(
//	    "directory=/var/log/app",
//	    "level=debug",
//	    "flush_threshold=50",
//	)
func (p *Pipeline) ApplyOverride(overrides ...string) error {
	cfg := p.getConfig().Clone()

	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return p.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("logpipe: multiple configuration errors:")
	for i, err := range errs {
		errMsg := err.Error()
		// Remove "logpipe: " prefix from individual errors to avoid duplication
		errMsg = strings.TrimPrefix(errMsg, "logpipe: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
// This is the core field mapping logic for string overrides.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "level":
		// Accept both numeric ranks and named levels
		level, ok := entry.ParseLevel(value)
		if !ok {
			return fmtErrorf("invalid level value '%s' (use 0..4 or debug, info, warning, error, critical)", value)
		}
		cfg.Level = int64(level)
	case "name":
		cfg.Name = value
	case "directory":
		cfg.Directory = value
	case "extension":
		cfg.Extension = value

	case "buffer_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for buffer_size '%s': %w", value, err)
		}
		cfg.BufferSize = intVal
	case "flush_threshold":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for flush_threshold '%s': %w", value, err)
		}
		cfg.FlushThreshold = intVal
	case "flush_interval_ms":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for flush_interval_ms '%s': %w", value, err)
		}
		cfg.FlushIntervalMs = intVal

	case "max_size_kb":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_size_kb '%s': %w", value, err)
		}
		cfg.MaxSizeKB = intVal
	case "max_generations":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_generations '%s': %w", value, err)
		}
		cfg.MaxGenerations = intVal

	case "enable_console":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for enable_console '%s': %w", value, err)
		}
		cfg.EnableConsole = boolVal
	case "console_target":
		cfg.ConsoleTarget = value

	case "max_stack_frames":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_stack_frames '%s': %w", value, err)
		}
		cfg.MaxStackFrames = intVal

	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown config key: '%s'", key)
	}

	return nil
}

package logpipe

import "github.com/lixenwraith/logpipe/entry"

// Builder provides a fluent API for building pipeline configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Pipeline instance with the specified configuration.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}

	p := New()

	// ApplyConfig handles all initialization and validation.
	if err := p.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return p, nil
}

// Level sets the minimum level rank.
func (b *Builder) Level(level Level) *Builder {
	b.cfg.Level = int64(level)
	return b
}

// LevelString sets the minimum level from a name or numeric rank.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, ok := entry.ParseLevel(level)
	if !ok {
		b.err = fmtErrorf("invalid level string: '%s'", level)
		return b
	}
	b.cfg.Level = int64(levelVal)
	return b
}

// Name sets the base name of the generation files.
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Directory sets the log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Extension sets the log file extension.
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// BufferSize sets the writer queue capacity.
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// FlushThreshold sets the buffered line count that triggers a flush.
func (b *Builder) FlushThreshold(count int64) *Builder {
	b.cfg.FlushThreshold = count
	return b
}

// FlushInterval sets the maximum buffer age in milliseconds.
func (b *Builder) FlushInterval(ms int64) *Builder {
	b.cfg.FlushIntervalMs = ms
	return b
}

// MaxSizeKB sets the rotation size cap in KB.
func (b *Builder) MaxSizeKB(size int64) *Builder {
	b.cfg.MaxSizeKB = size
	return b
}

// MaxSizeMB sets the rotation size cap in MB. Convenience.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeKB = size * sizeMultiplierKB
	return b
}

// MaxGenerations sets the highest archive suffix kept by rotation.
func (b *Builder) MaxGenerations(n int64) *Builder {
	b.cfg.MaxGenerations = n
	return b
}

// EnableConsole toggles forwarding to the console sink.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget selects "stdout" or "stderr" for the default sink.
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// MaxStackFrames bounds the captured stack trace blocks.
func (b *Builder) MaxStackFrames(n int64) *Builder {
	b.cfg.MaxStackFrames = n
	return b
}

// Example usage:
//
//	pipeline, err := logpipe.NewBuilder().
//		Directory("/var/log/app").
//		LevelString("debug").
//		FlushThreshold(50).
//		MaxSizeMB(5).
//		Build()
//
//	if err == nil {
//		_ = pipeline.Start()
//		defer pipeline.Shutdown()
//		pipeline.Info("pipeline initialized")
//	}

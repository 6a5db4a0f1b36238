package logpipe

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/lixenwraith/logpipe/entry"
)

// Pipeline is the core struct that encapsulates the logging pipeline: the
// level-filtering façade, the console dispatch, and the single writer
// goroutine that owns the buffer and the generation files. Construct one
// at process start and inject it at call sites; there is no package-level
// shared instance.
type Pipeline struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex
	clock         *timecache.TimeCache
	callerFn      atomic.Value // stores callerBox
}

// callerBox wraps a CallerFunc for atomic.Value storage
type callerBox struct {
	fn CallerFunc
}

// New creates a new Pipeline instance with default settings
func New() *Pipeline {
	p := &Pipeline{}

	p.currentConfig.Store(DefaultConfig())

	p.state.IsInitialized.Store(false)
	p.state.PipelineDisabled.Store(false)
	p.state.ShutdownCalled.Store(false)
	p.state.ProcessorExited.Store(true)
	p.state.SinkExited.Store(true)
	p.state.CurrentSize.Store(0)
	p.state.MinLevel.Store(int64(LevelInfo))

	// Create closed channels initially to prevent nil pointer issues
	initialLines := make(chan string)
	close(initialLines)
	p.state.ActiveLineChannel.Store(initialLines)

	initialConsole := make(chan consoleEvent)
	close(initialConsole)
	p.state.ActiveConsoleChannel.Store(initialConsole)

	p.state.writerRequestChan = make(chan writerRequest, 1)
	p.state.ConsoleSink.Store(&sinkBox{s: nil})

	p.callerFn.Store(callerBox{fn: defaultCaller})
	p.clock = timecache.NewWithResolution(time.Millisecond)

	return p
}

// ApplyConfig applies a validated configuration to the pipeline.
// This is the primary way applications should configure it.
func (p *Pipeline) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	p.initMu.Lock()
	defer p.initMu.Unlock()

	return p.applyConfig(cfg)
}

// GetConfig returns a copy of current configuration
func (p *Pipeline) GetConfig() *Config {
	return p.getConfig().Clone()
}

// Start begins pipeline processing. Safe to call multiple times.
// Returns error if the pipeline is not initialized.
func (p *Pipeline) Start() error {
	if !p.state.IsInitialized.Load() {
		return fmtErrorf("pipeline not initialized, call ApplyConfig first")
	}

	if p.state.Started.CompareAndSwap(false, true) {
		cfg := p.getConfig()

		lineChannel := make(chan string, cfg.BufferSize)
		p.state.ActiveLineChannel.Store(lineChannel)

		consoleChannel := make(chan consoleEvent, cfg.BufferSize)
		p.state.ActiveConsoleChannel.Store(consoleChannel)

		p.state.ProcessorExited.Store(false)
		p.state.SinkExited.Store(false)
		go p.processLines(lineChannel)
		go p.consumeConsole(consoleChannel)
	}

	return nil
}

// Stop halts pipeline processing, flushing the pending buffer. Can be
// restarted with Start(). Returns nil if already stopped.
func (p *Pipeline) Stop(timeout ...time.Duration) error {
	if !p.state.Started.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	var effectiveTimeout time.Duration
	if len(timeout) > 0 {
		effectiveTimeout = timeout[0]
	} else {
		cfg := p.getConfig()
		effectiveTimeout = 2 * time.Duration(cfg.FlushIntervalMs) * time.Millisecond
	}

	// Swap in closed channels so racing producers fail fast, then close
	// the real channels to signal the goroutines.
	lineCh := p.getLineChannel()
	closedLines := make(chan string)
	close(closedLines)
	p.state.ActiveLineChannel.Store(closedLines)
	if lineCh != closedLines {
		close(lineCh)
	}

	consoleCh := p.getConsoleChannel()
	closedConsole := make(chan consoleEvent)
	close(closedConsole)
	p.state.ActiveConsoleChannel.Store(closedConsole)
	if consoleCh != closedConsole {
		close(consoleCh)
	}

	deadline := time.Now().Add(effectiveTimeout)
	for time.Now().Before(deadline) {
		if p.state.ProcessorExited.Load() && p.state.SinkExited.Load() {
			return nil
		}
		time.Sleep(minWaitTime)
	}

	return fmtErrorf("writer did not exit within timeout (%v)", effectiveTimeout)
}

// Shutdown gracefully closes the pipeline, flushing pending records.
// If no timeout is provided, uses a default of 2x flush interval.
func (p *Pipeline) Shutdown(timeout ...time.Duration) error {
	if !p.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	p.state.PipelineDisabled.Store(true)

	if !p.state.IsInitialized.Load() {
		p.state.ShutdownCalled.Store(false)
		p.state.PipelineDisabled.Store(false)
		p.state.ProcessorExited.Store(true)
		return nil
	}

	var stopErr error
	if p.state.Started.Load() {
		stopErr = p.Stop(timeout...)
	}

	p.state.IsInitialized.Store(false)
	p.clock.Stop()

	var finalErr error
	cfPtr := p.state.CurrentFile.Load()
	if cfPtr != nil {
		if currentFile, ok := cfPtr.(*os.File); ok && currentFile != nil {
			if err := currentFile.Sync(); err != nil {
				finalErr = combineErrors(finalErr,
					fmtErrorf("failed to sync log file '%s' during shutdown: %w", currentFile.Name(), err))
			}
			if err := currentFile.Close(); err != nil {
				finalErr = combineErrors(finalErr,
					fmtErrorf("failed to close log file '%s' during shutdown: %w", currentFile.Name(), err))
			}
			p.state.CurrentFile.Store((*os.File)(nil))
		}
	}

	return combineErrors(finalErr, stopErr)
}

// ForceFlush blocks the calling goroutine until the buffer pending as of
// the call has been durably appended. The writer itself is never blocked.
// If no timeout is provided, uses a default of 2x flush interval.
func (p *Pipeline) ForceFlush(timeout ...time.Duration) error {
	return p.sendWriterRequest(false, timeout...)
}

// sendWriterRequest delivers a flush or clear request to the writer and
// waits for confirmation.
func (p *Pipeline) sendWriterRequest(clear bool, timeout ...time.Duration) error {
	p.state.requestMutex.Lock()
	defer p.state.requestMutex.Unlock()

	if !p.state.IsInitialized.Load() || p.state.ShutdownCalled.Load() {
		return fmtErrorf("pipeline not initialized or already shut down")
	}
	if !p.state.Started.Load() {
		return fmtErrorf("pipeline not started")
	}

	var effectiveTimeout time.Duration
	if len(timeout) > 0 {
		effectiveTimeout = timeout[0]
	} else {
		cfg := p.getConfig()
		effectiveTimeout = 2 * time.Duration(cfg.FlushIntervalMs) * time.Millisecond
	}

	req := writerRequest{clear: clear, done: make(chan struct{})}

	select {
	case p.state.writerRequestChan <- req:
		// Request sent
	case <-time.After(effectiveTimeout):
		return fmtErrorf("failed to send request to writer (possible deadlock or high load)")
	}

	select {
	case <-req.done:
		return nil
	case <-time.After(effectiveTimeout):
		return fmtErrorf("timeout waiting for writer confirmation (%v)", effectiveTimeout)
	}
}

// SetMinLevel updates the process-wide minimum level. Concurrent callers
// race benignly; the last write wins.
func (p *Pipeline) SetMinLevel(level Level) {
	p.state.MinLevel.Store(int64(level))
}

// MinLevel returns the current minimum level.
func (p *Pipeline) MinLevel() Level {
	return Level(p.state.MinLevel.Load())
}

// SetCallerFunc replaces the caller-identity resolver. Pass nil to restore
// the default source-file resolver.
func (p *Pipeline) SetCallerFunc(fn CallerFunc) {
	if fn == nil {
		fn = defaultCaller
	}
	p.callerFn.Store(callerBox{fn: fn})
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		LinesProcessed: p.state.LinesProcessed.Load(),
		DroppedLines:   p.state.DroppedLines.Load(),
		DroppedConsole: p.state.DroppedConsole.Load(),
		TotalFlushes:   p.state.TotalFlushes.Load(),
		TotalRotations: p.state.TotalRotations.Load(),
	}
}

// Debug logs a message at debug level
func (p *Pipeline) Debug(msg string, meta ...Field) {
	p.log(LevelDebug, msg, meta, false)
}

// Info logs a message at info level
func (p *Pipeline) Info(msg string, meta ...Field) {
	p.log(LevelInfo, msg, meta, false)
}

// Warn logs a message at warning level
func (p *Pipeline) Warn(msg string, meta ...Field) {
	p.log(LevelWarn, msg, meta, false)
}

// Error logs a message at error level
func (p *Pipeline) Error(msg string, meta ...Field) {
	p.log(LevelError, msg, meta, false)
}

// Critical logs a message at critical level
func (p *Pipeline) Critical(msg string, meta ...Field) {
	p.log(LevelCritical, msg, meta, false)
}

// ErrorTrace logs an error message with a stack trace block
func (p *Pipeline) ErrorTrace(msg string, meta ...Field) {
	p.log(LevelError, msg, meta, true)
}

// CriticalTrace logs a critical message with a stack trace block
func (p *Pipeline) CriticalTrace(msg string, meta ...Field) {
	p.log(LevelCritical, msg, meta, true)
}

// Log writes a record at an explicit level. withStack is honored only for
// error and critical levels.
func (p *Pipeline) Log(level Level, msg string, meta []Field, withStack bool) {
	p.log(level, msg, meta, withStack)
}

// log is the façade path: filter, timestamp, resolve caller, format both
// channels, dispatch console, enqueue persisted. It returns without ever
// waiting on file I/O.
func (p *Pipeline) log(level Level, msg string, meta []Field, withStack bool) {
	if p.state.PipelineDisabled.Load() || p.state.ShutdownCalled.Load() {
		return
	}
	if int64(level) < p.state.MinLevel.Load() {
		return // Filter rejection is a silent no-op
	}

	ts := p.clock.CachedTime()

	caller, line := "", 0
	if box, ok := p.callerFn.Load().(callerBox); ok && box.fn != nil {
		caller, line = box.fn(2)
	}

	var stack string
	if withStack && level >= LevelError {
		cfg := p.getConfig()
		stack = captureStack(stackSkipFrames, int(cfg.MaxStackFrames))
	}

	console, persisted := entry.Format(entry.Event{
		Timestamp: ts,
		Level:     level,
		Caller:    caller,
		Line:      line,
		Message:   msg,
		Meta:      meta,
		Stack:     stack,
	})

	if p.getConfig().EnableConsole {
		p.dispatchConsole(level.SinkSeverity(), console)
	}
	p.sendLine(persisted)
}

// sendLine hands one persisted line to the writer queue without blocking
// the producer beyond the channel handoff. Lines are dropped when the
// queue is full or already closed; loss before a flush is the documented
// trade-off for non-blocking producers.
func (p *Pipeline) sendLine(line string) {
	defer func() {
		if r := recover(); r != nil { // Send on closed channel during Stop
			p.state.DroppedLines.Add(1)
		}
	}()

	ch := p.getLineChannel()
	select {
	case ch <- line:
	default:
		p.state.DroppedLines.Add(1)
	}
}

// getLineChannel safely retrieves the current writer queue
func (p *Pipeline) getLineChannel() chan string {
	chVal := p.state.ActiveLineChannel.Load()
	return chVal.(chan string)
}

// getConfig returns the current configuration (thread-safe)
func (p *Pipeline) getConfig() *Config {
	return p.currentConfig.Load().(*Config)
}

// internalLog reports pipeline faults without touching the log path
func (p *Pipeline) internalLog(format string, args ...any) {
	if p.getConfig().InternalErrorsToStderr {
		fmt.Fprintf(os.Stderr, "logpipe: "+format, args...)
	}
}

// applyConfig is the internal implementation for applying configuration,
// assuming initMu is held
func (p *Pipeline) applyConfig(cfg *Config) error {
	oldCfg := p.getConfig()
	p.currentConfig.Store(cfg)

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		p.state.PipelineDisabled.Store(true)
		p.currentConfig.Store(oldCfg) // Rollback
		return fmtErrorf("failed to create log directory '%s': %w", cfg.Directory, err)
	}

	wasInitialized := p.state.IsInitialized.Load()
	wasStarted := p.state.Started.Load()

	needsRestart := wasStarted && wasInitialized && configRequiresRestart(oldCfg, cfg)

	if needsRestart {
		if err := p.Stop(); err != nil {
			p.currentConfig.Store(oldCfg) // Rollback
			return fmtErrorf("failed to stop writer for restart: %w", err)
		}
	}

	currentFilePtr := p.state.CurrentFile.Load()
	var currentFile *os.File
	if currentFilePtr != nil {
		currentFile, _ = currentFilePtr.(*os.File)
	}

	needsNewFile := !wasInitialized || currentFile == nil ||
		oldCfg.Directory != cfg.Directory ||
		oldCfg.Name != cfg.Name ||
		oldCfg.Extension != cfg.Extension

	if needsNewFile {
		logFile, err := p.openCurrentFile()
		if err != nil {
			p.state.PipelineDisabled.Store(true)
			p.currentConfig.Store(oldCfg) // Rollback
			return fmtErrorf("failed to create log file: %w", err)
		}

		if currentFile != nil && currentFile != logFile {
			_ = currentFile.Sync()
			if err := currentFile.Close(); err != nil {
				p.internalLog("warning - failed to close old log file: %v\n", err)
			}
		}

		p.state.CurrentFile.Store(logFile)
		p.state.CurrentSize.Store(0)
		if fi, errStat := logFile.Stat(); errStat == nil {
			p.state.CurrentSize.Store(fi.Size())
		}
	}

	// Default console sink per config, unless a custom sink is installed
	if box, ok := p.state.ConsoleSink.Load().(*sinkBox); !ok || box.s == nil || isDefaultSink(box.s) {
		var w io.Writer
		if cfg.ConsoleTarget == "stderr" {
			w = os.Stderr
		} else {
			w = os.Stdout
		}
		p.state.ConsoleSink.Store(&sinkBox{s: writerSink{w: w}})
	}

	p.state.MinLevel.Store(cfg.Level)
	p.state.IsInitialized.Store(true)
	p.state.ShutdownCalled.Store(false)
	p.state.PipelineDisabled.Store(false)

	if needsRestart {
		return p.Start()
	}

	return nil
}

// isDefaultSink reports whether s is one of the built-in writer sinks
func isDefaultSink(s Sink) bool {
	_, ok := s.(writerSink)
	return ok
}

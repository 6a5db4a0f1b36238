package logpipe

import (
	"bufio"
	"os"

	"github.com/lixenwraith/logpipe/entry"
)

// Read operations inspect what is durably on disk at the time of the
// call. They may race with an in-flight flush and are not required to see
// buffered lines; callers needing completeness call ForceFlush first.

// LogFilePath returns the path of the current generation file
func (p *Pipeline) LogFilePath() string {
	return p.logFilePath()
}

// AllLogFilePaths returns the current generation followed by every
// existing archive generation, newest first
func (p *Pipeline) AllLogFilePaths() []string {
	paths := []string{p.logFilePath()}
	cfg := p.getConfig()
	for i := 1; i <= int(cfg.MaxGenerations); i++ {
		gen := p.generationPath(i)
		if _, err := os.Stat(gen); err == nil {
			paths = append(paths, gen)
		}
	}
	return paths
}

// LogFileContents returns the contents of the current generation.
// A missing file is not an error for a best-effort log store; it reads as
// empty.
func (p *Pipeline) LogFileContents() (string, error) {
	data, err := os.ReadFile(p.logFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmtErrorf("failed to read log file: %w", err)
	}
	return string(data), nil
}

// LogFileSize returns the on-disk size of the current generation in
// bytes, 0 when the file does not exist
func (p *Pipeline) LogFileSize() int64 {
	info, err := os.Stat(p.logFilePath())
	if err != nil {
		return 0
	}
	return info.Size()
}

// RecentEntries parses persisted lines back into structured entries,
// oldest first, across all generations. A positive limit keeps only the
// most recent entries. Lines that fail to parse, including stack-trace
// continuation lines, are omitted.
func (p *Pipeline) RecentEntries(limit int) []entry.Entry {
	var entries []entry.Entry

	cfg := p.getConfig()
	for i := int(cfg.MaxGenerations); i >= 1; i-- {
		entries = append(entries, parseEntriesFromFile(p.generationPath(i))...)
	}
	entries = append(entries, parseEntriesFromFile(p.logFilePath())...)

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

// parseEntriesFromFile reads one generation and keeps every line that
// parses. Parse failures are recovered locally, never surfaced.
func parseEntriesFromFile(path string) []entry.Entry {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var entries []entry.Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if e, ok := entry.Parse(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ClearLogFiles discards the pending buffer, then truncates the current
// generation and every existing archive. Blocks until done.
func (p *Pipeline) ClearLogFiles() error {
	if p.state.Started.Load() {
		return p.sendWriterRequest(true)
	}

	// No writer running; mutate the files directly under the init lock
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if !p.state.IsInitialized.Load() {
		return fmtErrorf("pipeline not initialized")
	}
	p.clearGenerations()
	return nil
}

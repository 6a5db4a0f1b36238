package logpipe

import (
	"fmt"
	"os"
	"path/filepath"
)

// logFilePath returns the full path of the current generation
func (p *Pipeline) logFilePath() string {
	c := p.getConfig()
	filename := c.Name
	if c.Extension != "" {
		filename = c.Name + "." + c.Extension
	}
	return filepath.Join(c.Directory, filename)
}

// generationPath returns the full path of archive generation i
func (p *Pipeline) generationPath(i int) string {
	return fmt.Sprintf("%s.%d", p.logFilePath(), i)
}

// openCurrentFile opens (or creates) the current generation for appending
func (p *Pipeline) openCurrentFile() (*os.File, error) {
	fullPath := p.logFilePath()

	file, err := os.OpenFile(fullPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", fullPath, err)
	}
	return file, nil
}

// rotate shifts the generation set and recreates an empty current file.
// Generations move from the oldest boundary down: gen-i replaces
// gen-(i+1), current becomes gen-1, and whatever sat at the cap boundary
// is deleted. At most MaxGenerations archives survive. Called only from
// the writer after a successful flush.
func (p *Pipeline) rotate() error {
	cfg := p.getConfig()
	generations := int(cfg.MaxGenerations)

	currentFile := p.currentFile()
	if currentFile != nil {
		_ = currentFile.Sync()
		if err := currentFile.Close(); err != nil {
			p.internalLog("failed to close log file before rotation: %v\n", err)
			// Continue with rotation anyway
		}
	}

	for i := generations - 1; i >= 1; i-- {
		gen := p.generationPath(i)
		if _, err := os.Stat(gen); err != nil {
			continue
		}
		next := p.generationPath(i + 1)
		_ = os.Remove(next)
		if err := os.Rename(gen, next); err != nil {
			p.internalLog("failed to shift generation '%s': %v\n", gen, err)
		}
	}

	currentPath := p.logFilePath()
	if err := os.Rename(currentPath, p.generationPath(1)); err != nil {
		// The current file is closed and could not be archived. Reopen it
		// so logging continues appending rather than stopping entirely.
		p.internalLog("failed to archive log file '%s': %v\n", currentPath, err)
	}

	newFile, err := p.openCurrentFile()
	if err != nil {
		p.state.CurrentFile.Store((*os.File)(nil))
		p.state.PipelineDisabled.Store(true)
		return fmtErrorf("failed to create new log file after rotation: %w", err)
	}

	p.state.CurrentFile.Store(newFile)
	p.state.CurrentSize.Store(0)
	if fi, errStat := newFile.Stat(); errStat == nil {
		p.state.CurrentSize.Store(fi.Size())
	}
	p.state.TotalRotations.Add(1)

	return nil
}

// clearGenerations truncates the current generation and every existing
// archive. Called only from the writer, after the pending buffer has been
// discarded.
func (p *Pipeline) clearGenerations() {
	if currentFile := p.currentFile(); currentFile != nil {
		if err := currentFile.Truncate(0); err != nil {
			p.internalLog("failed to truncate log file: %v\n", err)
		} else {
			if _, err := currentFile.Seek(0, 0); err != nil {
				p.internalLog("failed to rewind log file: %v\n", err)
			}
			p.state.CurrentSize.Store(0)
		}
	}

	cfg := p.getConfig()
	for i := 1; i <= int(cfg.MaxGenerations); i++ {
		gen := p.generationPath(i)
		if _, err := os.Stat(gen); err != nil {
			continue
		}
		if err := os.Truncate(gen, 0); err != nil {
			p.internalLog("failed to truncate generation '%s': %v\n", gen, err)
		}
	}
}

package logpipe

import (
	"os"
	"time"
)

// processLines is the single writer goroutine. It alone mutates the
// pending buffer and the generation files; producers only ever hand lines
// to its queue. State machine: idle -> buffering -> flushing -> idle.
func (p *Pipeline) processLines(ch <-chan string) {
	defer p.state.ProcessorExited.Store(true)

	cfg := p.getConfig()
	threshold := int(cfg.FlushThreshold)
	interval := time.Duration(cfg.FlushIntervalMs) * time.Millisecond

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buffer := make([]string, 0, threshold)
	lastFlush := time.Now()

	for {
		select {
		case line, ok := <-ch:
			if !ok {
				// Channel closed: final flush and exit
				p.flushBuffer(&buffer)
				p.syncCurrentFile()
				return
			}
			buffer = append(buffer, line)
			if len(buffer) >= threshold {
				p.flushBuffer(&buffer)
				lastFlush = time.Now()
			}

		case <-ticker.C:
			// An empty buffer never triggers a write
			if len(buffer) > 0 && time.Since(lastFlush) >= interval {
				p.flushBuffer(&buffer)
				lastFlush = time.Now()
			}

		case req := <-p.state.writerRequestChan:
			// Lines enqueued before the request are part of the pending
			// buffer it refers to
			buffer = drainPending(ch, buffer)
			if req.clear {
				buffer = buffer[:0]
				p.clearGenerations()
			} else {
				p.flushBuffer(&buffer)
				p.syncCurrentFile()
			}
			lastFlush = time.Now()
			close(req.done)
		}
	}
}

// drainPending moves every line already sitting in the queue into the
// buffer without blocking.
func drainPending(ch <-chan string, buffer []string) []string {
	for {
		select {
		case line, ok := <-ch:
			if !ok {
				return buffer
			}
			buffer = append(buffer, line)
		default:
			return buffer
		}
	}
}

// flushBuffer swaps out the buffered lines, writes them as one append in
// enqueue order, and runs the rotation check. A write failure drops the
// batch; best-effort logging never crashes the host and the next flush is
// the implicit retry.
func (p *Pipeline) flushBuffer(buffer *[]string) {
	if len(*buffer) == 0 {
		return
	}

	pending := *buffer
	*buffer = (*buffer)[:0]

	size := 0
	for _, line := range pending {
		size += len(line) + 1
	}
	data := make([]byte, 0, size)
	for _, line := range pending {
		data = append(data, line...)
		data = append(data, '\n')
	}

	currentFile := p.currentFile()
	if currentFile == nil {
		p.state.DroppedLines.Add(uint64(len(pending)))
		return
	}

	n, err := currentFile.Write(data)
	if err != nil {
		p.internalLog("failed to write to log file: %v\n", err)
		p.state.DroppedLines.Add(uint64(len(pending)))
		return
	}

	p.state.CurrentSize.Add(int64(n))
	p.state.LinesProcessed.Add(uint64(len(pending)))
	p.state.TotalFlushes.Add(1)

	// Rotation is checked after every successful flush, never mid-flush
	cfg := p.getConfig()
	maxBytes := cfg.MaxSizeKB * sizeMultiplierKB
	if maxBytes > 0 && p.state.CurrentSize.Load() > maxBytes {
		if err := p.rotate(); err != nil {
			p.internalLog("failed to rotate log file: %v\n", err)
		}
	}
}

// syncCurrentFile syncs the current generation to disk
func (p *Pipeline) syncCurrentFile() {
	if currentFile := p.currentFile(); currentFile != nil {
		if err := currentFile.Sync(); err != nil {
			p.internalLog("failed to sync log file '%s': %v\n", currentFile.Name(), err)
		}
	}
}

// currentFile returns the handle of the current generation, nil when file
// output is unavailable
func (p *Pipeline) currentFile() *os.File {
	cfPtr := p.state.CurrentFile.Load()
	if cfPtr == nil {
		return nil
	}
	currentFile, ok := cfPtr.(*os.File)
	if !ok {
		return nil
	}
	return currentFile
}

package logpipe

import (
	"sync"
	"sync/atomic"
)

// State encapsulates the runtime state of the pipeline
type State struct {
	IsInitialized    atomic.Bool
	PipelineDisabled atomic.Bool
	ShutdownCalled   atomic.Bool
	Started          atomic.Bool
	ProcessorExited  atomic.Bool // Tracks whether the writer goroutine has exited
	SinkExited       atomic.Bool // Tracks whether the console dispatch goroutine has exited

	// Minimum level rank; a plain scalar, read-before-write races are
	// accepted (last write wins)
	MinLevel atomic.Int64

	CurrentFile atomic.Value // stores *os.File, mutated only by the writer
	CurrentSize atomic.Int64 // Size of the current generation file

	LinesProcessed atomic.Uint64 // Lines durably written
	DroppedLines   atomic.Uint64 // Lines lost to a full queue or write failure
	DroppedConsole atomic.Uint64 // Console events lost to a full sink queue
	TotalFlushes   atomic.Uint64 // Buffer flushes performed
	TotalRotations atomic.Uint64 // Generation shifts performed

	ActiveLineChannel    atomic.Value // stores chan string
	ActiveConsoleChannel atomic.Value // stores chan consoleEvent
	ConsoleSink          atomic.Value // stores *sinkBox

	writerRequestChan chan writerRequest // Flush and clear requests to the writer
	requestMutex      sync.Mutex         // Serializes ForceFlush/ClearLogFiles callers
}

// writerRequest asks the writer to flush (or clear) the pending buffer.
// done is closed once the request has been served.
type writerRequest struct {
	clear bool
	done  chan struct{}
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	LinesProcessed uint64
	DroppedLines   uint64
	DroppedConsole uint64
	TotalFlushes   uint64
	TotalRotations uint64
}

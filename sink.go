package logpipe

import (
	"fmt"
	"io"
)

// Sink is the external console logging facility. It is append-only and
// fire-and-forget: Emit has no return value and a dropped or delayed
// console write never affects persisted output.
type Sink interface {
	Emit(severity int, text string)
}

// consoleEvent is one rendered console line in flight to the sink.
type consoleEvent struct {
	severity int
	text     string
}

// sinkBox wraps a Sink for atomic.Value storage, value type change workaround
type sinkBox struct {
	s Sink
}

// writerSink emits console lines to an io.Writer. The pipeline adds no
// timestamp or level prefix; the sink target supplies its own.
type writerSink struct {
	w io.Writer
}

func (s writerSink) Emit(_ int, text string) {
	fmt.Fprintln(s.w, text)
}

// SetSink replaces the console sink. Pass nil to discard console output.
// Safe to call at any time; the next dispatched event uses the new sink.
func (p *Pipeline) SetSink(s Sink) {
	p.state.ConsoleSink.Store(&sinkBox{s: s})
}

// dispatchConsole hands a console line to the sink goroutine without ever
// blocking the caller. Events are dropped when the sink queue is full or
// already closed.
func (p *Pipeline) dispatchConsole(severity int, text string) {
	defer func() {
		if r := recover(); r != nil { // Send on closed channel during Stop
			p.state.DroppedConsole.Add(1)
		}
	}()

	ch := p.getConsoleChannel()
	select {
	case ch <- consoleEvent{severity: severity, text: text}:
	default:
		p.state.DroppedConsole.Add(1)
	}
}

// consumeConsole is the sink dispatch loop. It owns all Sink calls so that
// a slow sink delays nothing but itself.
func (p *Pipeline) consumeConsole(ch <-chan consoleEvent) {
	defer p.state.SinkExited.Store(true)

	for ev := range ch {
		p.emit(ev)
	}
}

// emit forwards one event to the current sink, isolating sink panics from
// the pipeline.
func (p *Pipeline) emit(ev consoleEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.internalLog("console sink panicked: %v\n", r)
		}
	}()

	if box, ok := p.state.ConsoleSink.Load().(*sinkBox); ok && box.s != nil {
		box.s.Emit(ev.severity, ev.text)
	}
}

// getConsoleChannel safely retrieves the current console channel
func (p *Pipeline) getConsoleChannel() chan consoleEvent {
	chVal := p.state.ActiveConsoleChannel.Load()
	return chVal.(chan consoleEvent)
}

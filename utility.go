package logpipe

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// CallerFunc resolves the identity of the logging call site. skip counts
// stack frames above the resolver, the returned line may be 0 when
// unknown. The pipeline never inspects call stacks itself; resolution
// always goes through this boundary.
type CallerFunc func(skip int) (caller string, line int)

// defaultCaller derives the caller identifier from the source file name.
func defaultCaller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "(unknown)", 0
	}
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, ".go")
	return name, line
}

// captureStack renders a bounded stack trace block. The innermost frames
// belonging to the pipeline are skipped; each frame becomes one indented
// line so that trace blocks never collide with the entry grammar.
func captureStack(skip, maxFrames int) string {
	if maxFrames <= 0 {
		return ""
	}
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pc) // +2 for Callers and captureStack
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pc[:n])
	var b strings.Builder
	first := true
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			if !first {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "    at %s (%s:%d)", frame.Function, filepath.Base(frame.File), frame.Line)
			first = false
		}
		if !more {
			break
		}
	}
	return b.String()
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "logpipe: ") {
		format = "logpipe: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" override string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

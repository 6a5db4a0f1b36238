// Package entry renders log events into their console and persisted text
// forms and parses persisted lines back into structured entries. The two
// forms share one layout: `glyph [caller[:line]] message | k=v, k2=v2`,
// with the persisted form additionally prefixed by `[timestamp] rank `.
package entry

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/logpipe/redact"
)

// TimestampLayout is the exact timestamp format of persisted lines. The
// parser rejects anything else, so it is a constant of the file format,
// not a configuration knob.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Field is one metadata key-value pair. Order of fields is preserved
// through formatting.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Event is one log event in flight. It lives for a single pipeline
// invocation and is consumed into the two rendered strings.
type Event struct {
	Timestamp time.Time
	Level     Level
	Caller    string
	Line      int // 0 means unknown, the :line suffix is omitted
	Message   string
	Meta      []Field
	Stack     string // pre-captured trace block, "" means none
}

// Format renders one event into its console and persisted representations.
// The console text carries fully resolved marker values and is never
// pattern-scanned; the persisted text carries placeholders and is scanned
// for sensitive data. Metadata and stack blocks are appended to both
// channels identically. Formatting never fails: malformed marker text
// degrades to literal text inside redact.Channels.
func Format(ev Event) (console, persisted string) {
	consoleMsg, persistedMsg := redact.Channels(ev.Message)

	header := headerFor(ev)
	suffix := suffixFor(ev)

	console = header + " " + consoleMsg + suffix

	var b bytes.Buffer
	b.Grow(len(TimestampLayout) + len(header) + len(persistedMsg) + len(suffix) + 8)
	b.WriteByte('[')
	b.WriteString(ev.Timestamp.Format(TimestampLayout))
	b.WriteString("] ")
	b.WriteString(strconv.FormatInt(int64(ev.Level), 10))
	b.WriteByte(' ')
	b.WriteString(header)
	b.WriteByte(' ')
	b.WriteString(persistedMsg)
	b.WriteString(suffix)
	persisted = b.String()
	return console, persisted
}

// headerFor builds `glyph [caller]` or `glyph [caller:line]`.
func headerFor(ev Event) string {
	if ev.Line > 0 {
		return ev.Level.Glyph() + " [" + ev.Caller + ":" + strconv.Itoa(ev.Line) + "]"
	}
	return ev.Level.Glyph() + " [" + ev.Caller + "]"
}

// suffixFor renders the metadata tail and stack block shared by both
// channels. Metadata is not redacted.
func suffixFor(ev Event) string {
	if len(ev.Meta) == 0 && ev.Stack == "" {
		return ""
	}
	var b bytes.Buffer
	if len(ev.Meta) > 0 {
		b.WriteString(" | ")
		for i, f := range ev.Meta {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key)
			b.WriteByte('=')
			appendValue(&b, f.Value)
		}
	}
	if ev.Stack != "" && ev.Level >= LevelError {
		b.WriteByte('\n')
		b.WriteString(ev.Stack)
	}
	return b.String()
}

// appendValue writes a metadata value in its text form. Scalars are
// rendered directly; everything else is delegated to spew with a compact
// configuration.
func appendValue(b *bytes.Buffer, v any) {
	switch val := v.(type) {
	case string:
		b.WriteString(val)
	case int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case nil:
		b.WriteString("nil")
	case time.Time:
		b.WriteString(val.Format(TimestampLayout))
	case time.Duration:
		b.WriteString(val.String())
	case error:
		b.WriteString(val.Error())
	case fmt.Stringer:
		b.WriteString(val.String())
	default:
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		var tmp bytes.Buffer
		dumper.Fdump(&tmp, val)
		b.Write(bytes.TrimSpace(tmp.Bytes()))
	}
}

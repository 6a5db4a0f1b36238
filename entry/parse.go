package entry

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry is one persisted line parsed back into a structured record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Caller    string
	Line      int // 0 when the line-number suffix was absent
	Message   string
	Meta      []Field
}

// lineGrammar matches `[timestamp] LEVEL glyph [caller[:line]] message`.
// Stack-trace continuation lines do not start with a bracketed timestamp
// and fall through naturally.
var lineGrammar = regexp.MustCompile(
	`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3})\] (\S+) (\S+) \[([^\]]+)\] ?(.*)$`)

// Parse parses one persisted line. It returns false when the line does not
// match the grammar, the timestamp does not use the exact persisted
// layout, or the level token is neither a known rank nor a level name.
// The :line suffix on the caller is optional; both the older and newer
// line formats parse.
func Parse(line string) (Entry, bool) {
	m := lineGrammar.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}

	ts, err := time.Parse(TimestampLayout, m[1])
	if err != nil {
		return Entry{}, false
	}

	level, ok := ParseLevel(m[2])
	if !ok {
		return Entry{}, false
	}

	caller, lineNo := splitCaller(m[4])

	message, meta := splitMeta(m[5])

	return Entry{
		Timestamp: ts,
		Level:     level,
		Caller:    caller,
		Line:      lineNo,
		Message:   message,
		Meta:      meta,
	}, true
}

// splitCaller separates an optional trailing :digits line number from the
// caller identifier.
func splitCaller(caller string) (string, int) {
	idx := strings.LastIndexByte(caller, ':')
	if idx < 0 {
		return caller, 0
	}
	n, err := strconv.Atoi(caller[idx+1:])
	if err != nil || n <= 0 {
		return caller, 0
	}
	return caller[:idx], n
}

// splitMeta separates the ` | k=v, k2=v2` metadata tail from the message.
func splitMeta(rest string) (string, []Field) {
	idx := strings.LastIndex(rest, " | ")
	if idx < 0 {
		return rest, nil
	}
	message := rest[:idx]
	var meta []Field
	for _, pair := range strings.Split(rest[idx+3:], ", ") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			// Not a metadata tail after all, keep the message whole
			return rest, nil
		}
		meta = append(meta, Field{Key: k, Value: v})
	}
	return message, meta
}

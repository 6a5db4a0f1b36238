// Package redact scrubs sensitive data from log text. It provides two
// mechanisms that coexist: automatic pattern scanning of free-form text,
// and explicit markers that resolve to the real value on the console
// channel but to a placeholder on the persisted channel.
package redact

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Placeholders substituted by the automatic scanning rules
const (
	PlaceholderCard     = "[REDACTED_CARD]"
	PlaceholderEmail    = "[REDACTED_EMAIL]"
	PlaceholderPhone    = "[REDACTED_PHONE]"
	PlaceholderSSN      = "[REDACTED_SSN]"
	PlaceholderPassword = "[REDACTED_PASSWORD]"
	PlaceholderAPIKey   = "[REDACTED_API_KEY]"
	PlaceholderToken    = "[REDACTED_TOKEN]"
	PlaceholderIP       = "[REDACTED_IP]"
)

// rule is one pattern -> replacement pair of the automatic scanner
type rule struct {
	pattern *regexp.Regexp
	replace string
}

// Rules apply in this exact order. Later rules operate on already
// partially-redacted text, and no placeholder contains digits, '@' or
// dots, so a replacement can never be re-matched by a later rule.
var rules = []rule{
	{regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`), PlaceholderCard},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), PlaceholderEmail},
	{regexp.MustCompile(`\b(?:\+?1[-. ]?)?(?:\(\d{3}\)[-. ]?|\d{3}[-. ])\d{3}[-. ]?\d{4}\b`), PlaceholderPhone},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), PlaceholderSSN},
	{regexp.MustCompile(`(?i)\b(password)\s*[:=]\s*\S+`), "$1: " + PlaceholderPassword},
	{regexp.MustCompile(`(?i)\b(api[_-]?key)\s*[:=]\s*\S+`), "$1: " + PlaceholderAPIKey},
	{regexp.MustCompile(`(?i)\b(token)\s*[:=]\s*\S+`), "$1: " + PlaceholderToken},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), PlaceholderIP},
}

// Scan applies the ordered automatic rules to arbitrary text and returns
// the redacted result. Rule order is a contract, not an implementation
// detail; see the rules table.
func Scan(text string) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.replace)
	}
	return text
}

// Marker wraps a value that must appear in full on the console channel and
// as its placeholder on the persisted channel. Embed it in a message with
// fmt.Sprintf("%s", marker) or marker.String().
type Marker struct {
	Real        string
	Placeholder string
}

// Mark creates a marker for value with the given placeholder.
func Mark(value, placeholder string) Marker {
	return Marker{Real: value, Placeholder: placeholder}
}

// Token encoding. The payload is base64, which cannot contain the
// delimiter or separator bytes, so a real value containing delimiter text
// round-trips intact.
const (
	markerDelim  = "\x1e"
	markerPrefix = "!R:"
	markerSep    = ":"
)

// String encodes the marker for embedding in message text.
func (m Marker) String() string {
	var b strings.Builder
	b.Grow(len(markerDelim)*2 + len(markerPrefix) + 1 +
		base64.StdEncoding.EncodedLen(len(m.Real)) +
		base64.StdEncoding.EncodedLen(len(m.Placeholder)))
	b.WriteString(markerDelim)
	b.WriteString(markerPrefix)
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(m.Real)))
	b.WriteString(markerSep)
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(m.Placeholder)))
	b.WriteString(markerDelim)
	return b.String()
}

// Channels resolves every marker in message twice and returns the console
// text (real values, no scanning) and the persisted text (placeholders,
// with non-marker segments run through Scan). Malformed or unterminated
// marker encodings degrade to literal text. Resolved placeholders are
// never re-scanned.
func Channels(message string) (console, persisted string) {
	if !strings.Contains(message, markerDelim) {
		return message, Scan(message)
	}

	var con, per strings.Builder
	rest := message
	for {
		start := strings.Index(rest, markerDelim)
		if start < 0 {
			con.WriteString(rest)
			per.WriteString(Scan(rest))
			break
		}

		literal := rest[:start]
		con.WriteString(literal)
		per.WriteString(Scan(literal))

		real, placeholder, consumed, ok := decodeToken(rest[start:])
		if !ok {
			// Fail open: keep the delimiter verbatim and continue after it
			con.WriteString(markerDelim)
			per.WriteString(markerDelim)
			rest = rest[start+len(markerDelim):]
			continue
		}
		con.WriteString(real)
		per.WriteString(placeholder)
		rest = rest[start+consumed:]
	}
	return con.String(), per.String()
}

// decodeToken parses one marker token at the start of s (s begins with the
// delimiter). Returns the decoded values and the token's byte length.
func decodeToken(s string) (real, placeholder string, consumed int, ok bool) {
	body := s[len(markerDelim):]
	end := strings.Index(body, markerDelim)
	if end < 0 {
		return "", "", 0, false
	}
	token := body[:end]
	if !strings.HasPrefix(token, markerPrefix) {
		return "", "", 0, false
	}
	parts := strings.SplitN(token[len(markerPrefix):], markerSep, 2)
	if len(parts) != 2 {
		return "", "", 0, false
	}
	realBytes, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", 0, false
	}
	placeholderBytes, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", 0, false
	}
	consumed = len(markerDelim) + end + len(markerDelim)
	return string(realBytes), string(placeholderBytes), consumed, true
}

// Package logpipe is a structured logging pipeline with dual-channel
// redaction and rotating file persistence.
//
// Log events from concurrent producers are filtered by level, rendered
// once into two text forms, and split: the fully resolved form goes to an
// external console sink (fire-and-forget), the redacted form is buffered
// and appended to a rotating set of generation files by a single writer
// goroutine. Producers never wait on file I/O; lines from one producer
// reach the file in call order, while ordering across producers is left
// to the embedded millisecond timestamps.
//
// Sensitive data is handled twice over: automatic pattern scanning
// (cards, emails, phones, SSNs, credential pairs, IPv4 addresses) covers
// the persisted channel, and explicit redact.Mark values resolve to their
// real value on the console but to a placeholder on disk, from a single
// logging call.
//
// Persisted lines use a regular single-line grammar and parse back into
// structured entries with entry.Parse or Pipeline.RecentEntries.
//
// Persistence is best-effort: write failures are skipped, not retried,
// and lines buffered at crash time are lost. Call ForceFlush before
// reads that must be complete and Shutdown on exit.
package logpipe

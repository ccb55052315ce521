package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Entry is one decoded JSON log record.
type Entry map[string]any

// Msg returns the record's message.
func (e Entry) Msg() string {
	s, _ := e[slog.MessageKey].(string)
	return s
}

// Level returns the record's level name, e.g. "WARN".
func (e Entry) Level() string {
	s, _ := e[slog.LevelKey].(string)
	return s
}

// Buffer collects log output in tests. It is safe for concurrent writers.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards everything written so far.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Entries decodes the buffer as one JSON record per line.
func (b *Buffer) Entries() ([]Entry, error) {
	lines := strings.Split(b.String(), "\n")
	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("log line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Find returns the records whose message is msg.
func (b *Buffer) Find(msg string) ([]Entry, error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range entries {
		if e.Msg() == msg {
			out = append(out, e)
		}
	}
	return out, nil
}

// ParseEntry decodes a single JSON log line. A blank line returns io.EOF.
func ParseEntry(line string) (Entry, error) {
	if strings.TrimSpace(line) == "" {
		return nil, io.EOF
	}
	var e Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return nil, err
	}
	return e, nil
}

// NewTestLogger returns a debug-level JSON logger writing to a fresh Buffer.
func NewTestLogger(t testing.TB) (*slog.Logger, *Buffer) {
	t.Helper()
	buf := &Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// CaptureContext returns a context carrying a test logger, for code that
// logs through FromContext.
func CaptureContext(t testing.TB) (context.Context, *Buffer) {
	t.Helper()
	log, buf := NewTestLogger(t)
	return WithLogger(context.Background(), log), buf
}

// AssertContains fails the test unless the buffer contains substr.
func AssertContains(t testing.TB, buf *Buffer, substr string) {
	t.Helper()
	if logs := buf.String(); !strings.Contains(logs, substr) {
		t.Errorf("expected logs to contain %q\nlogs:\n%s", substr, logs)
	}
}

// AssertEntry fails the test unless some record with message msg has field
// set to want. Numbers decode as float64.
func AssertEntry(t testing.TB, buf *Buffer, msg, field string, want any) {
	t.Helper()
	entries, err := buf.Find(msg)
	if err != nil {
		t.Fatalf("failed to parse logs: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no log record with message %q\nlogs:\n%s", msg, buf.String())
	}
	for _, e := range entries {
		if e[field] == want {
			return
		}
	}
	t.Errorf("no %q record has %s=%v\nlogs:\n%s", msg, field, want, buf.String())
}

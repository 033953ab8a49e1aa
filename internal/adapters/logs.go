package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// DefaultLogLimit is how many entries the logs panel asks for
const DefaultLogLimit = 50

const tailChunkSize = 8192

// entryPattern matches the first line of a Laravel log entry:
// [2024-01-02 15:04:05] local.ERROR: message
var entryPattern = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:[+-]\d{2}:?\d{2}|Z)?)\]\s*(\w+)?\.?(\w+)?:\s*(.*)$`)

var psrLevels = map[string]bool{
	"emergency": true, "alert": true, "critical": true, "error": true,
	"warning": true, "notice": true, "info": true, "debug": true,
}

// LogEntry is one parsed log record. Continuation lines such as stack traces
// are appended to Message.
type LogEntry struct {
	Timestamp string
	Time      time.Time
	Channel   string
	Level     string
	Message   string
}

// FirstLine returns the message up to the first newline
func (e LogEntry) FirstLine() string {
	if i := strings.IndexByte(e.Message, '\n'); i >= 0 {
		return e.Message[:i]
	}
	return e.Message
}

// IsError reports whether the entry is error level or worse
func (e LogEntry) IsError() bool {
	switch e.Level {
	case "error", "critical", "alert", "emergency":
		return true
	}
	return false
}

// LogAdapter reads a Laravel log file.
type LogAdapter struct {
	path string
}

// NewLogAdapter creates an adapter for the log file at path
func NewLogAdapter(path string) *LogAdapter {
	return &LogAdapter{path: path}
}

// Path returns the log file path
func (a *LogAdapter) Path() string { return a.path }

// Recent returns up to limit entries from the end of the file, newest first.
func (a *LogAdapter) Recent(limit int) ([]LogEntry, error) {
	return Guard("read logs", func() ([]LogEntry, error) {
		lines, err := TailLines(a.path, limit*3)
		if err != nil {
			return nil, err
		}
		entries := ParseLog(lines)
		if len(entries) > limit {
			entries = entries[:limit]
		}
		return entries, nil
	})
}

// Clear truncates the log file.
func (a *LogAdapter) Clear() error {
	return GuardErr("clear log", func() error {
		if err := os.Truncate(a.path, 0); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%s: %w", a.path, ErrUnavailable)
			}
			return err
		}
		return nil
	})
}

// ParseLog groups raw lines into entries and returns them newest first.
// Lines before the first recognizable header are ignored.
func ParseLog(lines []string) []LogEntry {
	var entries []LogEntry
	var cur *LogEntry
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := entryPattern.FindStringSubmatch(line); m != nil {
			if cur != nil {
				entries = append(entries, *cur)
			}
			cur = newEntry(m)
			continue
		}
		if cur != nil {
			cur.Message += "\n" + line
		}
	}
	if cur != nil {
		entries = append(entries, *cur)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func newEntry(m []string) *LogEntry {
	e := &LogEntry{Timestamp: m[1], Channel: m[2], Level: strings.ToLower(m[3]), Message: m[4]}
	// "[ts] ERROR: msg" has a level but no channel.
	if e.Level == "" && psrLevels[strings.ToLower(e.Channel)] {
		e.Level, e.Channel = strings.ToLower(e.Channel), ""
	}
	if e.Channel == "" {
		e.Channel = "local"
	}
	if e.Level == "" {
		e.Level = "info"
	}
	e.Time = parseTimestamp(strings.Replace(e.Timestamp, "T", " ", 1))
	if e.Time.IsZero() {
		e.Time = parseTimestamp(e.Timestamp)
	}
	return e
}

// TailLines returns at most n lines from the end of the file, reading
// backwards in fixed-size chunks so large logs are not read whole.
func TailLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnavailable)
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek log: %w", err)
	}
	var buf []byte
	pos := size
	for pos > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		chunk := int64(tailChunkSize)
		if pos < chunk {
			chunk = pos
		}
		pos -= chunk
		b := make([]byte, chunk)
		if _, err := f.ReadAt(b, pos); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read log: %w", err)
		}
		buf = append(b, buf...)
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	if pos > 0 && len(lines) > 0 {
		// First line is probably partial.
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

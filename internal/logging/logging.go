// Package logging provides the append-only status log every component reports to.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimeLayout is the timestamp format at the start of every line.
const TimeLayout = "2006-01-02 15:04:05"

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Logger is what components accept. Err reports whether the destination is
// still being written; callers check it before any destructive action.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Err() error
}

// Entry is a single status line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the entry as "<timestamp> - <LEVEL> - <message>".
func (e Entry) String() string {
	return e.Time.Format(TimeLayout) + " - " + string(e.Level) + " - " + e.Message
}

// Sink appends entries to a writer. Each entry is written with a single
// Write call so an O_APPEND file never sees interleaved lines.
type Sink struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	fallback io.Writer
	now      func() time.Time
	err      error
}

// Open opens (creating if absent) the log file at path for appending.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	s := NewSink(f)
	s.closer = f
	return s, nil
}

// NewSink records to w. Write failures are reported to stderr.
func NewSink(w io.Writer) *Sink {
	return &Sink{
		w:        w,
		fallback: os.Stderr,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Sink) WithClock(now func() time.Time) *Sink {
	s.now = now
	return s
}

// WithFallback sets where lines go when the destination fails.
func (s *Sink) WithFallback(w io.Writer) *Sink {
	s.fallback = w
	return s
}

func (s *Sink) Info(msg string, args ...any)  { s.Record(LevelInfo, msg, args...) }
func (s *Sink) Warn(msg string, args ...any)  { s.Record(LevelWarning, msg, args...) }
func (s *Sink) Error(msg string, args ...any) { s.Record(LevelError, msg, args...) }

// Record formats and appends one entry. After the first failed write the
// sink is poisoned: Err returns the failure and later entries only reach
// the fallback writer.
func (s *Sink) Record(level Level, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := Entry{Time: s.now().Truncate(time.Second), Level: level, Message: msg}.String() + "\n"

	if s.err == nil {
		n, err := io.WriteString(s.w, line)
		if err == nil && n < len(line) {
			err = io.ErrShortWrite
		}
		if err == nil {
			return
		}
		s.err = fmt.Errorf("appending to log: %w", err)
		s.fallbackf("log sink failed: %v\n", s.err)
	}
	s.fallbackf("%s", line)
}

func (s *Sink) fallbackf(format string, args ...any) {
	if s.fallback != nil {
		fmt.Fprintf(s.fallback, format, args...)
	}
}

// Err returns the first write failure, or nil while the sink is healthy.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the underlying file, if the sink owns one.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if s.err == nil {
		s.err = fmt.Errorf("log sink closed")
	}
	return err
}

// ErrUnavailable marks a failure caused by a broken log sink. Components
// return it instead of performing a deletion nobody could audit.
var ErrUnavailable = errors.New("log sink unavailable")

// Package logtest provides an in-memory logging.Logger for tests.
package logtest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raoulx24/feed-archiver/internal/logging"
)

// Recorder keeps every entry in memory. Setting Fail makes Err report a
// broken sink from that point on.
type Recorder struct {
	mu      sync.Mutex
	entries []logging.Entry
	Fail    error
}

func (r *Recorder) Info(msg string, args ...any)  { r.add(logging.LevelInfo, msg, args...) }
func (r *Recorder) Warn(msg string, args ...any)  { r.add(logging.LevelWarning, msg, args...) }
func (r *Recorder) Error(msg string, args ...any) { r.add(logging.LevelError, msg, args...) }

func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Fail
}

func (r *Recorder) add(level logging.Level, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logging.Entry{Time: time.Now(), Level: level, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []logging.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]logging.Entry(nil), r.entries...)
}

// Messages returns the messages recorded at level, in order.
func (r *Recorder) Messages(level logging.Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Count returns how many entries at level contain substr.
func (r *Recorder) Count(level logging.Level, substr string) int {
	n := 0
	for _, m := range r.Messages(level) {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

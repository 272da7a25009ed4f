package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 10, 17, 7, 55, 12, 987654321, time.Local)
	return func() time.Time { return t }
}

func TestSink_Format(t *testing.T) {
	tests := []struct {
		name  string
		write func(s *Sink)
		want  string
	}{
		{
			name:  "info",
			write: func(s *Sink) { s.Info("Directory exists: %s", "/data/feed") },
			want:  "2025-10-17 07:55:12 - INFO - Directory exists: /data/feed\n",
		},
		{
			name:  "warning",
			write: func(s *Sink) { s.Warn("Some files are missing in feed directory.") },
			want:  "2025-10-17 07:55:12 - WARNING - Some files are missing in feed directory.\n",
		},
		{
			name:  "error",
			write: func(s *Sink) { s.Error("File missing: %s", "order.csv") },
			want:  "2025-10-17 07:55:12 - ERROR - File missing: order.csv\n",
		},
		{
			name:  "percent without args is literal",
			write: func(s *Sink) { s.Info("100% done") },
			want:  "2025-10-17 07:55:12 - INFO - 100% done\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSink(&buf).WithClock(fixedClock())
			tt.write(s)

			if got := buf.String(); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
			if s.Err() != nil {
				t.Errorf("Err() = %v, want nil", s.Err())
			}
		})
	}
}

func TestOpen_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic_checks.log")

	for run := 0; run < 2; run++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		s.WithClock(fixedClock())
		s.Info("run %d first", run)
		s.Info("run %d second", run)
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	want := []string{"run 0 first", "run 0 second", "run 1 first", "run 1 second"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), data)
	}
	for i, w := range want {
		if !strings.HasSuffix(lines[i], " - INFO - "+w) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], w)
		}
	}
}

func TestOpen_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "basic_checks.log")

	if _, err := Open(path); err == nil {
		t.Fatal("Open() error = nil, want error for missing parent directory")
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestSink_WriteFailurePoisons(t *testing.T) {
	fw := &failingWriter{}
	var fallback bytes.Buffer
	s := NewSink(fw).WithClock(fixedClock()).WithFallback(&fallback)

	s.Info("first")
	if s.Err() == nil {
		t.Fatal("Err() = nil after failed write")
	}
	s.Error("second")

	if fw.calls != 1 {
		t.Errorf("destination written %d times, want 1", fw.calls)
	}
	out := fallback.String()
	if !strings.Contains(out, "log sink failed") {
		t.Errorf("fallback missing failure notice: %q", out)
	}
	if !strings.Contains(out, "- INFO - first") || !strings.Contains(out, "- ERROR - second") {
		t.Errorf("fallback missing entries: %q", out)
	}
}

func TestSink_ClosedIsUnhealthy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "a.log"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Err() == nil {
		t.Error("Err() = nil after Close()")
	}
}

package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = 100 * time.Millisecond })

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "succeeds first try", errs: []error{nil}, wantCalls: 1},
		{name: "transient then success", errs: []error{syscall.EBUSY, syscall.EAGAIN, nil}, wantCalls: 3},
		{name: "permanent error stops", errs: []error{syscall.EACCES}, wantCalls: 1, wantErr: true},
		{
			name:      "transient exhausts retries",
			errs:      []error{syscall.EBUSY, syscall.EBUSY, syscall.EBUSY, syscall.EBUSY, syscall.EBUSY},
			wantCalls: 5,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(context.Background(), "op", func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, "op", func() error {
		t.Fatal("fn called with canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retry() error = %v, want context.Canceled", err)
	}
}

func TestChanged(t *testing.T) {
	base := FileInfo{Size: 10, MTime: time.Unix(1000, 0), Inode: 7}

	tests := []struct {
		name string
		now  FileInfo
		want bool
	}{
		{name: "identical", now: base, want: false},
		{name: "size differs", now: FileInfo{Size: 11, MTime: base.MTime, Inode: 7}, want: true},
		{name: "mtime differs", now: FileInfo{Size: 10, MTime: time.Unix(1001, 0), Inode: 7}, want: true},
		{name: "inode differs", now: FileInfo{Size: 10, MTime: base.MTime, Inode: 8}, want: true},
		{name: "inode unknown", now: FileInfo{Size: 10, MTime: base.MTime}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed(base, tt.now); got != tt.want {
				t.Errorf("Changed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSFS_ReadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.zip"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := New().ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadDir() returned %d entries, want 2", len(entries))
	}

	byName := map[string]FileInfo{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if !byName["a.zip"].Regular() || byName["a.zip"].Size != 1 {
		t.Errorf("a.zip = %+v, want regular file of size 1", byName["a.zip"])
	}
	if !byName["sub"].IsDir() || byName["sub"].Regular() {
		t.Errorf("sub = %+v, want directory", byName["sub"])
	}
}

func TestOSFS_CreateIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	if err := os.WriteFile(path, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New().Create(path); !os.IsExist(err) {
		t.Fatalf("Create() error = %v, want exist error", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "keep" {
		t.Errorf("existing file overwritten: %q", got)
	}
}

func TestOSFS_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New()
	if err := f.Remove(context.Background(), path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after Remove(): %v", err)
	}

	err := f.Remove(context.Background(), path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("second Remove() error = %v, want not-exist", err)
	}
}

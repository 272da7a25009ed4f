// Package fs defines the filesystem abstraction used by feed-archiver.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"io"
	"os"
	"time"
)

type FileInfo struct {
	Path  string
	Name  string
	Size  int64
	MTime time.Time
	Inode uint64
	Mode  os.FileMode
}

func (fi FileInfo) IsDir() bool { return fi.Mode.IsDir() }

// Regular reports whether the entry is a plain file (not a directory,
// symlink, device or socket).
func (fi FileInfo) Regular() bool { return fi.Mode.IsRegular() }

// ReadFile is the handle returned by FS.Open. ReaderAt lets archives be
// verified in place.
type ReadFile interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// WriteFile is the handle returned by FS.Create.
type WriteFile interface {
	io.Writer
	Sync() error
	Close() error
}

type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]FileInfo, error)
	Open(path string) (ReadFile, error)
	Create(path string) (WriteFile, error)
	Rename(ctx context.Context, oldPath, newPath string) error
	Remove(ctx context.Context, path string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}

// Package check verifies that the feed directory and its expected files exist.
package check

import (
	"path/filepath"

	"github.com/raoulx24/feed-archiver/internal/fs"
	"github.com/raoulx24/feed-archiver/internal/logging"
)

type Checker struct {
	fs  fs.FS
	log logging.Logger
}

func New(filesystem fs.FS, log logging.Logger) *Checker {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Checker{fs: filesystem, log: log}
}

// DirectoryExists reports whether path is an existing directory.
func (c *Checker) DirectoryExists(path string) bool {
	info, err := c.fs.Stat(path)
	if err != nil || !info.IsDir() {
		c.log.Error("Directory not found: %s", path)
		return false
	}
	c.log.Info("Directory exists: %s", path)
	return true
}

// FilesExist checks every name in dir and logs each one, even after a miss,
// so the log holds a full picture of the feed. It returns true only if all
// of them exist.
func (c *Checker) FilesExist(dir string, names []string) bool {
	all := true
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := c.fs.Stat(path); err != nil {
			c.log.Error("File missing: %s", path)
			all = false
			continue
		}
		c.log.Info("File exists: %s", path)
	}
	return all
}

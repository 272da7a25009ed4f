package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/raoulx24/feed-archiver/internal/artifact"
	"github.com/raoulx24/feed-archiver/internal/retention"
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

func newConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the config before anything touches the filesystem.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Feed.Dir) == "" {
		return newConfigError("feed.dir", "must not be empty")
	}
	if len(c.Feed.Files) == 0 {
		return newConfigError("feed.files", "must list at least one file")
	}

	seen := map[string]string{}
	for _, name := range c.Feed.Files {
		if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
			return newConfigError("feed.files", "%q must be a plain file name", name)
		}
		art := artifact.NameFor(name)
		if other, ok := seen[art]; ok {
			return newConfigError("feed.files", "%q and %q would both be archived as %s", other, name, art)
		}
		seen[art] = name
	}

	if strings.TrimSpace(c.Archive.Dir) == "" {
		return newConfigError("archive.dir", "must not be empty")
	}
	if filepath.Clean(c.Archive.Dir) == filepath.Clean(c.Feed.Dir) {
		return newConfigError("archive.dir", "must differ from feed.dir")
	}
	if c.Archive.RetentionDays < 0 {
		return newConfigError("archive.retentionDays", "must not be negative, got %d", c.Archive.RetentionDays)
	}
	if c.Archive.RetentionDays > retention.MaxDays {
		return newConfigError("archive.retentionDays", "must be at most %d, got %d", retention.MaxDays, c.Archive.RetentionDays)
	}
	if lvl := c.Archive.Level(); lvl < -2 || lvl > 9 {
		return newConfigError("archive.compressionLevel", "must be between -2 and 9, got %d", lvl)
	}

	if strings.TrimSpace(c.Logging.Path) == "" {
		return newConfigError("logging.path", "must not be empty")
	}

	return nil
}

package artifact

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/raoulx24/feed-archiver/internal/fs"
)

// Ext is the extension of every archive artifact.
const Ext = ".zip"

// Artifact describes a single file in the feed or archive directory.
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// FromFileInfo constructs an Artifact from a stat result.
func FromFileInfo(info fs.FileInfo) Artifact {
	return Artifact{
		Name:    filepath.Base(info.Path),
		Path:    info.Path,
		Size:    info.Size,
		ModTime: info.MTime,
	}
}

// NameFor returns the artifact file name for a source file:
// the base name with its extension replaced by Ext.
func NameFor(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + Ext
}

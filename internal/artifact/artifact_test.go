package artifact

import (
	"testing"
	"time"

	"github.com/raoulx24/feed-archiver/internal/fs"
)

func TestNameFor(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"customer.csv", "customer.zip"},
		{"/data/feed/order.csv", "order.zip"},
		{"archive.tar.gz", "archive.tar.zip"},
		{"README", "README.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := NameFor(tt.source); got != tt.want {
				t.Errorf("NameFor(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestFromFileInfo(t *testing.T) {
	mod := time.Unix(1700000000, 0)
	a := FromFileInfo(fs.FileInfo{Path: "/archive/order.zip", Size: 42, MTime: mod})

	if a.Name != "order.zip" || a.Path != "/archive/order.zip" || a.Size != 42 || !a.ModTime.Equal(mod) {
		t.Errorf("FromFileInfo() = %+v", a)
	}
}

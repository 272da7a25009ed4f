//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf reads the inode from syscall.Stat_t. Changed uses it to notice a
// source that was replaced (not just rewritten) while being compressed.

func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return st.Ino
}

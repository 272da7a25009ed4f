package fs

import (
	"errors"
	"syscall"
)

// ErrSourceChanged is returned when a file changes while it is being read
// into an archive.
var ErrSourceChanged = errors.New("source changed during compression")

// isTransient reports whether an operation is worth retrying.
// Anything else (permission denied, not found, cross-device) fails immediately.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

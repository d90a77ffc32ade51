package repository

import (
	"errors"
	"io/fs"
	"syscall"
)

// Sentinel kinds for event log errors.
var (
	ErrInit   = errors.New("event log init failed")
	ErrEncode = errors.New("event log encode failed")
	ErrAppend = errors.New("event log append failed")
	ErrRead   = errors.New("event log read failed")
)

// IsFatal reports whether an append failure means the log can no longer be
// written by this process. Encode failures and everything not listed here
// (disk full, interrupted writes) are treated as transient.
func IsFatal(err error) bool {
	if err == nil || errors.Is(err, ErrEncode) {
		return false
	}
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, syscall.EBADF) ||
		errors.Is(err, syscall.EROFS) ||
		errors.Is(err, syscall.EISDIR)
}

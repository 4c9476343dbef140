//go:build windows

package lock

import (
	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

// Locker is unavailable on Windows.
type Locker struct{}

func unsupported() error {
	return autoErrors.NewLockError("", 0,
		autoErrors.Wrap(autoErrors.ErrLockAcquisitionFailure,
			"autocommit currently only supports Unix-like operating systems"))
}

// New always fails on Windows.
func New(repoPath string) (*Locker, error) { return nil, unsupported() }

// NewInDir always fails on Windows.
func NewInDir(repoPath, dir string) (*Locker, error) { return nil, unsupported() }

// Path returns "".
func (l *Locker) Path() string { return "" }

// Held reports false.
func (l *Locker) Held() bool { return false }

// Acquire always fails on Windows.
func (l *Locker) Acquire() error { return unsupported() }

// Release is a no-op.
func (l *Locker) Release() error { return nil }

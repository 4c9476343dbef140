//go:build !windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/go-ps"
	"golang.org/x/sys/unix"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

// Locker guarantees a single autocommit watcher per repository.
// The lock is an flock(2)-held file whose content is the owner's PID, so a
// lock left behind by a crashed watcher can be detected and taken over.
type Locker struct {
	lockFile string
	fd       *os.File
	pid      int
}

// New creates a Locker for repoPath with its lock file in os.TempDir().
func New(repoPath string) (*Locker, error) {
	return NewInDir(repoPath, os.TempDir())
}

// NewInDir creates a Locker for repoPath with its lock file in dir.
func NewInDir(repoPath, dir string) (*Locker, error) {
	if strings.TrimSpace(repoPath) == "" {
		return nil, autoErrors.NewLockError("", 0,
			autoErrors.Wrap(autoErrors.ErrLockAcquisitionFailure, "repository path must not be empty"))
	}

	return &Locker{
		lockFile: filepath.Join(dir, FileName(repoPath)),
		pid:      os.Getpid(),
	}, nil
}

// FileName returns the lock file name used for repoPath.
func FileName(repoPath string) string {
	return fmt.Sprintf("autocommit-%016x.lock", xxhash.Sum64String(repoPath))
}

// Path returns the lock file location.
func (l *Locker) Path() string {
	return l.lockFile
}

// Held reports whether this Locker currently owns the lock.
func (l *Locker) Held() bool {
	return l.fd != nil
}

// Acquire takes the lock. It fails with ErrAlreadyRunning when a live
// process holds it and recovers locks whose owner has exited.
func (l *Locker) Acquire() error {
	if l.fd != nil {
		return nil
	}

	err := l.lockFresh()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return err
	}

	return l.lockExisting()
}

// lockFresh creates the lock file exclusively and locks it.
// The raw *PathError is returned when the file already exists.
func (l *Locker) lockFresh() error {
	f, err := os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return err
		}
		return autoErrors.NewLockError(l.lockFile, 0,
			autoErrors.Wrap(err, "failed to create lock file"))
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		return autoErrors.NewLockError(l.lockFile, 0,
			autoErrors.Wrap(err, "failed to lock new lock file"))
	}

	return l.claim(f)
}

// lockExisting locks a lock file left by another process.
func (l *Locker) lockExisting() error {
	f, err := os.OpenFile(l.lockFile, os.O_RDWR, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			// Released between our create and open
			return l.lockFresh()
		}
		return autoErrors.NewLockError(l.lockFile, 0,
			autoErrors.Wrap(err, "failed to open existing lock file"))
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		// EWOULDBLOCK and EAGAIN are distinct on some older systems
		if autoErrors.Is(err, unix.EWOULDBLOCK) || autoErrors.Is(err, unix.EAGAIN) {
			return l.blocked()
		}
		return autoErrors.NewLockError(l.lockFile, 0,
			autoErrors.Wrap(err, "failed to lock existing lock file"))
	}

	// The previous owner exited without removing its file
	return l.claim(f)
}

// blocked handles a lock currently flocked by someone else.
func (l *Locker) blocked() error {
	owner, err := readPID(l.lockFile)
	if err != nil {
		return autoErrors.NewLockError(l.lockFile, 0,
			autoErrors.Wrap(autoErrors.ErrAlreadyRunning, "another autocommit instance holds the lock but its PID is unreadable"))
	}

	if processRunning(owner) {
		return autoErrors.NewLockError(l.lockFile, owner, autoErrors.ErrAlreadyRunning)
	}

	// The flock is held but its recorded owner is gone (e.g. an inherited descriptor)
	if err := os.Remove(l.lockFile); err != nil {
		return autoErrors.NewLockError(l.lockFile, owner,
			autoErrors.Wrapf(err, "stale lock from PID %d could not be removed", owner))
	}

	if err := l.lockFresh(); err != nil {
		if os.IsExist(err) {
			return autoErrors.NewLockError(l.lockFile, 0,
				autoErrors.Wrap(autoErrors.ErrAlreadyRunning, "another instance took the lock after stale lock removal"))
		}
		return err
	}
	return nil
}

// claim records our PID in a locked file and takes ownership of it.
func (l *Locker) claim(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return autoErrors.NewLockError(l.lockFile, l.pid,
			autoErrors.Wrap(err, "failed to truncate lock file"))
	}

	if _, err := f.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		_ = f.Close()
		_ = os.Remove(l.lockFile)
		return autoErrors.NewLockError(l.lockFile, l.pid,
			autoErrors.Wrap(err, "failed to write PID to lock file"))
	}

	l.fd = f
	return nil
}

// Release unlocks and removes the lock file. Calling it without holding the lock is a no-op.
func (l *Locker) Release() error {
	if l.fd == nil {
		return nil
	}

	var errs []error
	if err := unix.Flock(int(l.fd.Fd()), unix.LOCK_UN); err != nil {
		errs = append(errs, autoErrors.Wrap(err, "failed to unlock"))
	}
	if err := l.fd.Close(); err != nil {
		errs = append(errs, autoErrors.Wrap(err, "failed to close lock file"))
	}
	l.fd = nil

	if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
		errs = append(errs, autoErrors.Wrap(err, "failed to remove lock file"))
	}

	if len(errs) > 0 {
		return autoErrors.NewLockError(l.lockFile, l.pid, autoErrors.Join(errs...))
	}
	return nil
}

func flock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// processRunning looks pid up in the process table.
func processRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := ps.FindProcess(pid)
	return err == nil && p != nil
}

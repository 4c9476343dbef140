//go:build !windows

package lock

import (
	"os"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

func newTestLocker(t *testing.T, dir string) *Locker {
	t.Helper()
	l, err := NewInDir("/repo/under/test", dir)
	require.NoError(t, err)
	return l
}

func TestNewInDirValidation(t *testing.T) {
	_, err := NewInDir("  ", t.TempDir())
	require.Error(t, err)
	assert.True(t, autoErrors.Is(err, autoErrors.ErrLockAcquisitionFailure))
}

func TestFileNameIsStablePerRepository(t *testing.T) {
	assert.Equal(t, FileName("/a"), FileName("/a"))
	assert.NotEqual(t, FileName("/a"), FileName("/b"))
	assert.Regexp(t, `^autocommit-[0-9a-f]{16}\.lock$`, FileName("/a"))
}

func TestAcquireAndRelease(t *testing.T) {
	l := newTestLocker(t, t.TempDir())

	require.NoError(t, l.Acquire())
	assert.True(t, l.Held())
	require.NoError(t, l.Acquire(), "acquiring twice is a no-op")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	require.NoError(t, l.Release())
	assert.False(t, l.Held())
	_, err = os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, l.Release(), "releasing twice is a no-op")
}

func TestSecondLockerIsRejected(t *testing.T) {
	dir := t.TempDir()
	first := newTestLocker(t, dir)
	second := newTestLocker(t, dir)

	require.NoError(t, first.Acquire())
	t.Cleanup(func() { _ = first.Release() })

	err := second.Acquire()
	require.Error(t, err)
	assert.True(t, autoErrors.Is(err, autoErrors.ErrAlreadyRunning))

	var lockErr *autoErrors.LockError
	require.True(t, autoErrors.As(err, &lockErr))
	assert.Equal(t, os.Getpid(), lockErr.PID)

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire(), "the lock is free once released")
	require.NoError(t, second.Release())
}

func TestUnlockedLeftoverFileIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	l := newTestLocker(t, dir)

	// A crashed owner leaves its file but not its flock
	require.NoError(t, os.WriteFile(l.Path(), []byte("999999999"), 0o600))

	require.NoError(t, l.Acquire())
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
	require.NoError(t, l.Release())
}

func TestLockedByDeadPIDIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	holder := newTestLocker(t, dir)
	require.NoError(t, holder.Acquire())
	t.Cleanup(func() { _ = holder.Release() })

	// Keep the flock but record a PID that has exited
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skip("cannot spawn a short-lived process")
	}
	deadPID := cmd.ProcessState.Pid()
	require.NoError(t, holder.fd.Truncate(0))
	_, err := holder.fd.WriteAt([]byte(strconv.Itoa(deadPID)), 0)
	require.NoError(t, err)

	l := newTestLocker(t, dir)
	require.NoError(t, l.Acquire())
	assert.True(t, l.Held())
	require.NoError(t, l.Release())
}

func TestProcessRunning(t *testing.T) {
	assert.True(t, processRunning(os.Getpid()))
	assert.False(t, processRunning(0))
	assert.False(t, processRunning(-1))
}

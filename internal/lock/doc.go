// Package lock ensures only one autocommit watcher runs per repository.
//
// Two watchers on one working tree would interleave "git add" and
// "git commit" and fight over .git/index.lock. The Locker takes an exclusive
// flock on a per-repository file in the temp directory and writes its PID
// into it. When the lock is found held by a PID that no longer exists, or the
// file exists but is unlocked, the lock is treated as stale and taken over.
//
// Lock files are named autocommit-<hash>.lock where <hash> is derived from
// the absolute repository path.
package lock

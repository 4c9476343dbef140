// Package errors provides error handling utilities for autocommit.
//
// It wraps the standard library errors package and adds typed errors that
// carry operation context: GitError for failed git commands (with the command
// output, which is how benign "nothing to commit" failures are recognised),
// LockError for the repository lock and ConfigError for invalid settings.
// Every typed error unwraps to one of the sentinels declared here, so callers
// branch with errors.Is:
//
//	if errors.Is(err, errors.ErrNothingToCommit) {
//	    // benign: staging produced no delta
//	}
package errors

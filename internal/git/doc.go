// Package git runs the git commands autocommit relies on.
//
// The watcher needs exactly two write operations, staging everything
// ("git add .") and committing the index with a message ("git commit -m"),
// plus a few read-only queries used at startup. Repository implements them on
// top of a CommandExecutor so tests can substitute a mock.
//
// # Errors
//
// Every failed command returns an *errors.GitError that carries git's output
// and unwraps to errors.ErrGitOperationFailed. A commit refused because the
// index already matches HEAD unwraps to errors.ErrNothingToCommit instead;
// the aggregator treats that case as benign.
//
// # Implementation Notes
//
// The package uses the command-line git executable rather than a Go git
// library, so hooks, attributes and user configuration behave exactly as they
// do in the developer's shell.
package git

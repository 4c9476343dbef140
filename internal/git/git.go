package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

// nothingToCommitMarkers are the phrases git prints when a commit has no delta.
var nothingToCommitMarkers = []string{
	"nothing to commit",
	"nothing added to commit",
	"no changes added to commit",
}

// Repository runs the git commands the watcher needs against one work tree.
// It is safe for concurrent use as long as the executor is; callers are still
// expected to serialise Stage and Commit.
type Repository struct {
	// path is the work tree passed to every command as "git -C <path>"
	path string

	// executor runs git and captures its output
	executor CommandExecutor
}

// NewRepository creates a Repository using the default executor.
func NewRepository(path string) (*Repository, error) {
	return NewRepositoryWithExecutor(path, NewExecExecutor())
}

// NewRepositoryWithExecutor creates a Repository with a custom executor.
func NewRepositoryWithExecutor(path string, executor CommandExecutor) (*Repository, error) {
	if path == "" {
		return nil, autoErrors.NewConfigError("repoPath", nil,
			autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, "repository path must not be empty"))
	}
	if executor == nil {
		return nil, fmt.Errorf("command executor must not be nil")
	}
	return &Repository{path: path, executor: executor}, nil
}

// Path returns the work tree the repository operates on.
func (r *Repository) Path() string {
	return r.path
}

// IsRepository checks if the given path is a git repository
// Returns true if it is a repository, false otherwise.
// If path is not a repository due to git exit code 128, returns (false, nil).
// For other errors (git not found, permission issues, etc), returns (false, err).
func IsRepository(path string) (bool, error) {
	executor := NewExecExecutor()
	err := executor.ExecuteWithContext(context.Background(), "git", "-C", path, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		// Exit code 128 is git's generic fatal error; for rev-parse it means
		// the directory is not inside a work tree. Any broken repository is
		// fatal to the watcher anyway, so both cases read as "not a repository".
		var exitErr *exec.ExitError
		if autoErrors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stage marks every working-tree change for the next commit ("git add .").
func (r *Repository) Stage(ctx context.Context) error {
	if err := r.runGitCommand(ctx, "add", "."); err != nil {
		if autoErrors.Is(err, autoErrors.ErrGitOperationFailed) {
			return err
		}
		return autoErrors.NewGitError("add", []string{"."},
			autoErrors.Wrap(err, "failed to stage changes"), "")
	}
	return nil
}

// Commit records the staged changes with message. When git refuses because
// the index matches HEAD the returned error matches errors.ErrNothingToCommit.
func (r *Repository) Commit(ctx context.Context, message string) error {
	err := r.runGitCommand(ctx, "commit", "-m", message)
	if err == nil {
		return nil
	}

	var gitErr *autoErrors.GitError
	if autoErrors.As(err, &gitErr) && isNothingToCommit(gitErr.Output) {
		return autoErrors.NewGitError("commit", gitErr.Args,
			fmt.Errorf("%w: %w", autoErrors.ErrNothingToCommit, gitErr.Err), gitErr.Output)
	}
	if autoErrors.Is(err, autoErrors.ErrGitOperationFailed) {
		return err
	}
	return autoErrors.NewGitError("commit", []string{"-m", message},
		autoErrors.Wrap(err, "failed to create commit"), "")
}

// CurrentBranch returns the name of the checked out branch.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.runGitCommandWithOutput(ctx, "branch", "--show-current")
	if err != nil {
		return "unknown", err
	}
	return strings.TrimSpace(output), nil
}

// HasUncommittedChanges returns true if the work tree or index differs from HEAD.
func (r *Repository) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := r.runGitCommandWithOutput(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// isNothingToCommit reports whether git's output is a clean-index refusal.
func isNothingToCommit(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range nothingToCommitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// runGitCommand executes a git command in the repository directory with context.
func (r *Repository) runGitCommand(ctx context.Context, args ...string) error {
	allArgs := append([]string{"-C", r.path}, args...)
	return r.executor.ExecuteWithContext(ctx, "git", allArgs...)
}

// runGitCommandWithOutput executes a git command and returns its output with context.
func (r *Repository) runGitCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	allArgs := append([]string{"-C", r.path}, args...)
	return r.executor.ExecuteWithContextAndOutput(ctx, "git", allArgs...)
}

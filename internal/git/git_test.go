package git

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

func newMockRepository(t *testing.T) (*Repository, *MockCommandExecutor) {
	t.Helper()

	executor := NewMockCommandExecutor()
	repo, err := NewRepositoryWithExecutor("/tmp/repo", executor)
	require.NoError(t, err)
	return repo, executor
}

// failWith builds the error ExecExecutor produces for a failed command.
func failWith(operation, output string) error {
	return autoErrors.NewGitError(operation, nil,
		fmt.Errorf("%w: exit status 1", autoErrors.ErrGitOperationFailed), output)
}

func TestNewRepositoryValidation(t *testing.T) {
	_, err := NewRepositoryWithExecutor("", NewMockCommandExecutor())
	require.Error(t, err)
	assert.True(t, autoErrors.Is(err, autoErrors.ErrInvalidConfiguration))

	_, err = NewRepositoryWithExecutor("/tmp/repo", nil)
	require.Error(t, err)

	repo, err := NewRepository("/tmp/repo")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/repo", repo.Path())
}

func TestStage(t *testing.T) {
	repo, executor := newMockRepository(t)

	require.NoError(t, repo.Stage(context.Background()))

	require.Len(t, executor.Commands, 1)
	assert.Equal(t, "git", executor.Commands[0].Name)
	assert.Equal(t, []string{"-C", "/tmp/repo", "add", "."}, executor.Commands[0].Args)
}

func TestStageFailure(t *testing.T) {
	repo, executor := newMockRepository(t)
	executor.ExecuteFn = func(context.Context, string, ...string) (string, error) {
		return "", failWith("add", "fatal: Unable to create '.git/index.lock': File exists.")
	}

	err := repo.Stage(context.Background())
	require.Error(t, err)
	assert.True(t, autoErrors.Is(err, autoErrors.ErrGitOperationFailed))
	assert.Contains(t, err.Error(), "index.lock")
}

func TestCommit(t *testing.T) {
	repo, executor := newMockRepository(t)

	require.NoError(t, repo.Commit(context.Background(), "Auto Commit [2024-01-01 12:00:00] — Added: 1 (a)"))
	assert.Equal(t, []string{"git commit -m Auto Commit [2024-01-01 12:00:00] — Added: 1 (a)"}, executor.commandLines())
}

func TestCommitNothingToCommit(t *testing.T) {
	outputs := []string{
		"On branch main\nnothing to commit, working tree clean",
		"On branch main\nnothing added to commit but untracked files present",
		"no changes added to commit (use \"git add\" and/or \"git commit -a\")",
	}

	for _, output := range outputs {
		repo, executor := newMockRepository(t)
		executor.ExecuteFn = func(context.Context, string, ...string) (string, error) {
			return "", failWith("commit", output)
		}

		err := repo.Commit(context.Background(), "msg")
		require.Error(t, err)
		assert.True(t, autoErrors.Is(err, autoErrors.ErrNothingToCommit), output)

		var gitErr *autoErrors.GitError
		require.True(t, autoErrors.As(err, &gitErr))
		assert.Equal(t, "commit", gitErr.Operation)
	}
}

func TestCommitOtherFailure(t *testing.T) {
	repo, executor := newMockRepository(t)
	executor.ExecuteFn = func(context.Context, string, ...string) (string, error) {
		return "", failWith("commit", "Author identity unknown")
	}

	err := repo.Commit(context.Background(), "msg")
	require.Error(t, err)
	assert.False(t, autoErrors.Is(err, autoErrors.ErrNothingToCommit))
	assert.True(t, autoErrors.Is(err, autoErrors.ErrGitOperationFailed))
}

func TestCommitNonGitError(t *testing.T) {
	repo, executor := newMockRepository(t)
	executor.ExecuteFn = func(context.Context, string, ...string) (string, error) {
		return "", fmt.Errorf("boom")
	}

	err := repo.Commit(context.Background(), "msg")
	require.Error(t, err)

	var gitErr *autoErrors.GitError
	require.True(t, autoErrors.As(err, &gitErr))
	assert.Equal(t, "commit", gitErr.Operation)
}

func TestCurrentBranch(t *testing.T) {
	repo, executor := newMockRepository(t)
	executor.Output = "feature/watch\n"

	branch, err := repo.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "feature/watch", branch)

	executor.ExecuteFn = func(context.Context, string, ...string) (string, error) {
		return "", failWith("branch", "")
	}
	branch, err = repo.CurrentBranch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "unknown", branch)
}

func TestHasUncommittedChanges(t *testing.T) {
	repo, executor := newMockRepository(t)

	executor.Output = ""
	dirty, err := repo.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, dirty)

	executor.Output = " M main.go\n"
	dirty, err = repo.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "commit", operationName([]string{"-C", "/repo", "commit", "-m", "x"}))
	assert.Equal(t, "status", operationName([]string{"--no-pager", "status"}))
	assert.Equal(t, "command", operationName(nil))
}

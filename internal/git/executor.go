package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

// CommandExecutor defines an interface for executing commands
type CommandExecutor interface {
	// ExecuteWithContext runs a command and reports whether it succeeded
	ExecuteWithContext(ctx context.Context, name string, args ...string) error

	// ExecuteWithContextAndOutput runs a command and returns its stdout
	ExecuteWithContextAndOutput(ctx context.Context, name string, args ...string) (string, error)
}

// ExecExecutor is the default implementation of CommandExecutor
// that delegates to the os/exec package
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// ExecuteWithContext implements CommandExecutor.ExecuteWithContext
func (e *ExecExecutor) ExecuteWithContext(ctx context.Context, name string, args ...string) error {
	_, err := e.ExecuteWithContextAndOutput(ctx, name, args...)
	return err
}

// ExecuteWithContextAndOutput implements CommandExecutor.ExecuteWithContextAndOutput.
// On failure the returned *errors.GitError carries stderr followed by stdout,
// since git prints some refusals (such as "nothing to commit") on stdout.
func (e *ExecExecutor) ExecuteWithContextAndOutput(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(strings.Join([]string{
			strings.TrimSpace(stderr.String()),
			strings.TrimSpace(stdout.String()),
		}, "\n"))

		// Keep both the sentinel and the *exec.ExitError in the chain
		wrappedErr := fmt.Errorf("%w: %w", autoErrors.ErrGitOperationFailed, err)
		return "", autoErrors.NewGitError(operationName(args), args, wrappedErr, output)
	}

	return stdout.String(), nil
}

// operationName finds the git subcommand, skipping global "-C <path>" options.
func operationName(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-C" {
			i++
			continue
		}
		if strings.HasPrefix(args[i], "-") {
			continue
		}
		return args[i]
	}
	return "command"
}

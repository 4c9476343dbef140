package git

import (
	"context"
	"strings"
)

// executedCommand records one call made through MockCommandExecutor.
type executedCommand struct {
	Name string
	Args []string
}

// MockCommandExecutor records calls instead of running anything.
type MockCommandExecutor struct {
	Commands []executedCommand
	Output   string

	// ExecuteFn overrides the result of every call when set
	ExecuteFn func(ctx context.Context, name string, args ...string) (string, error)
}

// NewMockCommandExecutor creates a new mock executor
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{}
}

// ExecuteWithContext implements the CommandExecutor interface
func (m *MockCommandExecutor) ExecuteWithContext(ctx context.Context, name string, args ...string) error {
	_, err := m.ExecuteWithContextAndOutput(ctx, name, args...)
	return err
}

// ExecuteWithContextAndOutput implements the CommandExecutor interface
func (m *MockCommandExecutor) ExecuteWithContextAndOutput(ctx context.Context, name string, args ...string) (string, error) {
	m.Commands = append(m.Commands, executedCommand{Name: name, Args: args})

	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, name, args...)
	}
	return m.Output, nil
}

// commandLines renders recorded commands as "git add ." style strings,
// dropping the "-C <path>" prefix.
func (m *MockCommandExecutor) commandLines() []string {
	lines := make([]string, 0, len(m.Commands))
	for _, c := range m.Commands {
		args := c.Args
		if len(args) >= 2 && args[0] == "-C" {
			args = args[2:]
		}
		lines = append(lines, strings.TrimSpace(c.Name+" "+strings.Join(args, " ")))
	}
	return lines
}

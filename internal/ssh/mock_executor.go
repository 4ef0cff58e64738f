package ssh

import "context"

// MockExecutor is a test double that records commands and returns configured results.
type MockExecutor struct {
	ExecFunc       func(ctx context.Context, command string) (*ExecResult, error)
	ExecStreamFunc func(ctx context.Context, command string) error
	Commands       []string
	Closed         bool
}

// Exec records the command and delegates to ExecFunc.
func (m *MockExecutor) Exec(ctx context.Context, command string) (*ExecResult, error) {
	m.Commands = append(m.Commands, command)
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, command)
	}
	return &ExecResult{Stdout: "", Stderr: "", ExitCode: 0}, nil
}

// ExecStream records the command and delegates to ExecStreamFunc.
func (m *MockExecutor) ExecStream(ctx context.Context, command string) error {
	m.Commands = append(m.Commands, command)
	if m.ExecStreamFunc != nil {
		return m.ExecStreamFunc(ctx, command)
	}
	return nil
}

// Close records that the connection was released.
func (m *MockExecutor) Close() error {
	m.Closed = true
	return nil
}

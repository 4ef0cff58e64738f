package cmd

import (
	"context"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// verboseExecutor wraps a connected client so every remote command is
// echoed (masked) to the terminal before it runs. With --verbose off the
// echo is a no-op, so the wrapper is always safe to install.
type verboseExecutor struct {
	inner ssh.Executor
	echo  func(command string)
}

func newVerboseExecutor(inner ssh.Executor) *verboseExecutor {
	return &verboseExecutor{inner: inner, echo: PrintVerboseCommand}
}

func (v *verboseExecutor) Exec(ctx context.Context, command string) (*ssh.ExecResult, error) {
	v.echo(command)
	return v.inner.Exec(ctx, command)
}

func (v *verboseExecutor) ExecStream(ctx context.Context, command string) error {
	v.echo(command)
	return v.inner.ExecStream(ctx, command)
}

func (v *verboseExecutor) Close() error {
	return v.inner.Close()
}

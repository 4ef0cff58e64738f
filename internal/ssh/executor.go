package ssh

import "context"

// Executor abstracts remote command execution for testability. Every
// component that touches the target host depends on this interface, never
// on a concrete client.
type Executor interface {
	Exec(ctx context.Context, command string) (*ExecResult, error)
	ExecStream(ctx context.Context, command string) error
	Close() error
}

package ssh

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
)

// SudoUploadContent writes content to a root-owned remote path via sudo tee.
// SECURITY: Uses base64 encoding to prevent heredoc injection attacks
func SudoUploadContent(ctx context.Context, e Executor, content, remotePath string) error {
	base64Content := base64.StdEncoding.EncodeToString([]byte(content))

	cmd := fmt.Sprintf("echo '%s' | base64 -d | sudo tee %s > /dev/null",
		base64Content, security.ShellEscape(remotePath))

	result, err := e.Exec(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to upload content: %w", err)
	}

	if result.ExitCode != 0 {
		return fmt.Errorf("failed to write file: %s", result.Stderr)
	}

	return nil
}

// FileExists checks if a file exists on the remote server
func FileExists(ctx context.Context, e Executor, remotePath string) (bool, error) {
	result, err := e.Exec(ctx, fmt.Sprintf("test -f %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return result.Stdout == "exists\n", nil
}

// DirectoryExists checks if a directory exists on the remote server
func DirectoryExists(ctx context.Context, e Executor, remotePath string) (bool, error) {
	result, err := e.Exec(ctx, fmt.Sprintf("test -d %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return result.Stdout == "exists\n", nil
}

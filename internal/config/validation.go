package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ValidateRunConfig validates every collected input. The run aborts before
// any remote contact if this reports errors.
func ValidateRunConfig(cfg *RunConfig) ValidationErrors {
	var errors ValidationErrors

	if err := security.ValidateRepoURL(cfg.RepoURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "repo",
			Message: err.Error(),
		})
	} else if _, err := cfg.Identity(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "repo",
			Message: err.Error(),
		})
	}

	if err := security.ValidateBranch(cfg.Branch); err != nil {
		errors = append(errors, ValidationError{
			Field:   "branch",
			Message: err.Error(),
		})
	}

	if err := security.ValidateUnixUser(cfg.SSHUser); err != nil {
		errors = append(errors, ValidationError{
			Field:   "ssh_user",
			Message: err.Error(),
		})
	}

	if err := security.ValidateHost(cfg.SSHHost); err != nil {
		errors = append(errors, ValidationError{
			Field:   "host",
			Message: err.Error(),
		})
	}

	if cfg.SSHPort < 1 || cfg.SSHPort > 65535 {
		errors = append(errors, ValidationError{
			Field:   "ssh_port",
			Message: "port must be between 1 and 65535",
		})
	}

	if cfg.KeyPath == "" {
		// AUTODEPLOY_SSH_KEY carries the key content in CI.
		if os.Getenv("AUTODEPLOY_SSH_KEY") == "" {
			errors = append(errors, ValidationError{
				Field:   "key",
				Message: "SSH private key path is required",
			})
		}
	} else if _, err := os.Stat(ssh.ExpandKeyPath(cfg.KeyPath)); err != nil {
		errors = append(errors, ValidationError{
			Field:   "key",
			Message: fmt.Sprintf("key file not found: %s", cfg.KeyPath),
		})
	}

	if err := security.ValidatePort(cfg.AppPort); err != nil {
		errors = append(errors, ValidationError{
			Field:   "port",
			Message: err.Error(),
		})
	}

	return errors
}

// ValidateCleanupConfig checks only what a teardown needs: the repository
// URL (to derive the identity) and the SSH connection parameters.
func ValidateCleanupConfig(cfg *RunConfig) ValidationErrors {
	var errors ValidationErrors

	if err := security.ValidateRepoURL(cfg.RepoURL); err != nil {
		errors = append(errors, ValidationError{Field: "repo", Message: err.Error()})
	} else if _, err := cfg.Identity(); err != nil {
		errors = append(errors, ValidationError{Field: "repo", Message: err.Error()})
	}

	if err := security.ValidateUnixUser(cfg.SSHUser); err != nil {
		errors = append(errors, ValidationError{Field: "ssh_user", Message: err.Error()})
	}

	if err := security.ValidateHost(cfg.SSHHost); err != nil {
		errors = append(errors, ValidationError{Field: "host", Message: err.Error()})
	}

	if cfg.SSHPort < 1 || cfg.SSHPort > 65535 {
		errors = append(errors, ValidationError{Field: "ssh_port", Message: "port must be between 1 and 65535"})
	}

	if cfg.KeyPath == "" {
		if os.Getenv("AUTODEPLOY_SSH_KEY") == "" {
			errors = append(errors, ValidationError{Field: "key", Message: "SSH private key path is required"})
		}
	} else if _, err := os.Stat(ssh.ExpandKeyPath(cfg.KeyPath)); err != nil {
		errors = append(errors, ValidationError{Field: "key", Message: fmt.Sprintf("key file not found: %s", cfg.KeyPath)})
	}

	return errors
}

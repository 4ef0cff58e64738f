package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/deploy"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// runCleanup tears down everything a previous run created for the
// repository's identity. No provisioning or staging happens; the only
// remote requirement is an SSH connection.
func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := collectRunConfig(true)
	if err != nil {
		return err
	}

	identity, err := cfg.Identity()
	if err != nil {
		return exitcode.Wrap(exitcode.InvalidInput, err)
	}

	logger, err := logging.NewRunLogger()
	if err != nil {
		return exitcode.Wrap(exitcode.Generic, err)
	}
	defer logger.Close()
	PrintInfo("Logging this run to %s", logger.Path())
	logger.Infof("cleaning up %s on %s@%s", identity, cfg.SSHUser, cfg.SSHHost)

	ctx := context.Background()

	PrintInfo("Connecting to %s...", cfg.SSHHost)
	client := ssh.NewClient(cfg.SSHHost, cfg.SSHUser, cfg.SSHPort, cfg.KeyPath,
		ssh.WithTimeout(constants.SSHConnectTimeout))
	if err := client.Connect(); err != nil {
		logger.Errorf("SSH connection failed: %v", err)
		return exitcode.Wrap(exitcode.SSHConnect, err)
	}
	defer client.Close()
	PrintSuccess("Connected")
	remote := newVerboseExecutor(client)

	PrintInfo("Removing deployment %s...", identity)
	if err := deploy.NewCleaner(remote, logger).Cleanup(ctx, identity); err != nil {
		logger.Errorf("cleanup failed: %v", err)
		return err
	}

	PrintSuccess("Cleanup of %s complete", identity)
	return nil
}

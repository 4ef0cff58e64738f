package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/config"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/deploy"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/git"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/nginx"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/provision"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/transfer"
)

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := collectRunConfig(false)
	if err != nil {
		return err
	}

	if err := CheckLocalTools(); err != nil {
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
	logger.Infof("deploying %s (branch %s) to %s@%s",
		security.MaskCredentialURL(cfg.RepoURL), cfg.Branch, cfg.SSHUser, cfg.SSHHost)
	PrintVerbose("Application identity: %s", identity)

	ctx := context.Background()

	PrintInfo("Staging repository...")
	localDir, err := git.NewStager("", logger).Stage(ctx, cfg)
	if err != nil {
		logger.Errorf("staging failed: %v", err)
		return err
	}
	PrintSuccess("Repository ready at %s", localDir)

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

	PrintInfo("Provisioning host...")
	if err := provision.NewHostPreparer(remote, logger).Prepare(ctx); err != nil {
		logger.Errorf("provisioning failed: %v", err)
		return err
	}
	PrintSuccess("Host ready")

	PrintInfo("Syncing code to %s...", constants.AppDir(identity))
	syncer := transfer.NewSynchronizer(cfg.SSHUser, cfg.SSHHost, cfg.SSHPort, cfg.KeyPath, logger)
	if err := syncer.Sync(ctx, remote, localDir, identity); err != nil {
		logger.Errorf("sync failed: %v", err)
		return err
	}
	PrintSuccess("Code synced")

	mode, descriptor, err := deploy.DetectMode(ctx, remote, identity)
	if err != nil {
		logger.Errorf("mode detection failed: %v", err)
		return err
	}
	PrintInfo("Deploying via %s (%s)...", mode, descriptor)
	if err := deploy.NewDeployer(remote, logger).Deploy(ctx, mode, identity, cfg.AppPort); err != nil {
		logger.Errorf("deployment failed: %v", err)
		return err
	}
	PrintSuccess("Application started")

	PrintInfo("Configuring nginx...")
	if err := nginx.NewConfigurer(remote, logger).Configure(ctx, identity, cfg.AppPort); err != nil {
		logger.Errorf("nginx configuration failed: %v", err)
		return err
	}
	PrintSuccess("Reverse proxy active on port 80")

	PrintInfo("Validating deployment...")
	if err := deploy.NewChecker(remote, logger).Check(ctx, cfg.SSHHost); err != nil {
		logger.Errorf("validation failed: %v", err)
		return err
	}

	logger.Infof("deployment of %s complete", identity)
	PrintSuccess("Deployed: http://%s/", cfg.SSHHost)
	return nil
}

// collectRunConfig assembles the run configuration from, in order of
// precedence: flags, environment, the defaults file, interactive prompts.
// The credential is never read from or written to the defaults file. For
// cleanup only the identity and SSH parameters are collected and checked.
func collectRunConfig(cleanupOnly bool) (*config.RunConfig, error) {
	path := GetConfigFile()
	if path == "" {
		path = config.DefaultConfigFile
	}

	cfg, err := config.LoadRunConfig(path)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.InvalidInput, err)
	}

	applyFlags(cfg)

	if cfg.Token.IsZero() {
		if envToken := os.Getenv("AUTODEPLOY_TOKEN"); envToken != "" {
			cfg.Token = security.NewSecret(envToken)
		}
	}

	if IsInteractive() {
		if err := promptForMissing(cfg, cleanupOnly); err != nil {
			return nil, exitcode.Wrap(exitcode.InvalidInput, err)
		}
	}

	errs := config.ValidateRunConfig(cfg)
	if cleanupOnly {
		errs = config.ValidateCleanupConfig(cfg)
	}
	if errs.HasErrors() {
		return nil, exitcode.Wrap(exitcode.InvalidInput, errs)
	}

	// Remember everything but the credential for the next run.
	if err := config.SaveRunConfig(cfg, path); err != nil {
		PrintWarning("Could not save defaults to %s: %v", path, err)
	}

	return cfg, nil
}

func applyFlags(cfg *config.RunConfig) {
	if flagRepo != "" {
		cfg.RepoURL = flagRepo
	}
	if flagToken != "" {
		cfg.Token = security.NewSecret(flagToken)
	}
	if flagBranch != "" {
		cfg.Branch = flagBranch
	}
	if flagSSHUser != "" {
		cfg.SSHUser = flagSSHUser
	}
	if flagHost != "" {
		cfg.SSHHost = flagHost
	}
	if flagKey != "" {
		cfg.KeyPath = flagKey
	}
	if flagPort != "" {
		cfg.AppPort = flagPort
	}
}

// promptForMissing asks for every value still unset. Defaults loaded from
// the config file show up as prompt defaults, so a rerun is mostly Enter.
func promptForMissing(cfg *config.RunConfig, cleanupOnly bool) error {
	var err error

	if cfg.RepoURL == "" {
		if cfg.RepoURL, err = PromptString("Repository URL (https, ending in .git)", ""); err != nil {
			return err
		}
	}
	if !cleanupOnly && cfg.Token.IsZero() {
		token, err := PromptSecret("Git access token (PAT)")
		if err != nil {
			return err
		}
		cfg.Token = security.NewSecret(token)
	}
	if !cleanupOnly && cfg.Branch == "" {
		if cfg.Branch, err = PromptString("Branch", "main"); err != nil {
			return err
		}
	}
	if cfg.SSHUser == "" {
		if cfg.SSHUser, err = PromptString("SSH username", ""); err != nil {
			return err
		}
	}
	if cfg.SSHHost == "" {
		if cfg.SSHHost, err = PromptString("Server address (hostname or IP)", ""); err != nil {
			return err
		}
	}
	if cfg.SSHPort == 0 {
		portStr, err := PromptString("SSH port", "22")
		if err != nil {
			return err
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("SSH port must be numeric: %q", portStr)
		}
		cfg.SSHPort = port
	}
	if cfg.KeyPath == "" && os.Getenv("AUTODEPLOY_SSH_KEY") == "" {
		if cfg.KeyPath, err = PromptString("SSH private key path", defaultKeyPath()); err != nil {
			return err
		}
	}
	if !cleanupOnly && cfg.AppPort == "" {
		if cfg.AppPort, err = PromptString("Application port (container-internal)", ""); err != nil {
			return err
		}
	}

	return nil
}

// defaultKeyPath suggests the first common key that exists.
func defaultKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		p := home + "/.ssh/" + name
		if _, err := os.Stat(p); err == nil {
			return "~/.ssh/" + name
		}
	}
	return ""
}

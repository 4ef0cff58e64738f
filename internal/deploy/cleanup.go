package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// Cleaner removes everything a deployment placed on the target host. Every
// step tolerates absence, so cleanup after a partial run or a second
// cleanup of the same identity both succeed.
type Cleaner struct {
	executor ssh.Executor
	log      *logging.RunLogger
}

// NewCleaner creates a cleaner bound to one connected host.
func NewCleaner(executor ssh.Executor, log *logging.RunLogger) *Cleaner {
	return &Cleaner{executor: executor, log: log}
}

// Cleanup tears down the deployment: containers, compose stack, network,
// image, application directory, and the nginx site. nginx is reloaded at
// the end if its remaining configuration still validates.
func (c *Cleaner) Cleanup(ctx context.Context, identity string) error {
	appDir := constants.AppDir(identity)

	c.removeContainer(ctx, identity)
	c.composeDown(ctx, identity)
	c.removeNetwork(ctx, identity)
	c.removeImage(ctx, identity)

	c.run(ctx, fmt.Sprintf("sudo rm -rf %s", security.ShellEscape(appDir)),
		"removing "+appDir)

	c.run(ctx, fmt.Sprintf("sudo rm -f %s %s",
		security.ShellEscape(constants.SiteEnabledPath(identity)),
		security.ShellEscape(constants.SiteAvailablePath(identity))),
		"removing nginx site")

	c.reloadNginx(ctx)

	c.log.Infof("cleanup of %s complete", identity)
	return nil
}

func (c *Cleaner) removeContainer(ctx context.Context, identity string) {
	container := constants.ContainerName(identity)
	c.run(ctx, fmt.Sprintf("sudo docker rm -f %s 2>/dev/null || true",
		security.ShellEscape(container)), "removing container "+container)
}

// composeDown tears the stack down only when a descriptor is still present
// in the application directory; without one there is no stack to address.
func (c *Cleaner) composeDown(ctx context.Context, identity string) {
	appDir := constants.AppDir(identity)

	if found, err := ssh.DirectoryExists(ctx, c.executor, appDir); err != nil || !found {
		return
	}

	for _, name := range constants.ComposeFiles {
		found, err := ssh.FileExists(ctx, c.executor, filepath.Join(appDir, name))
		if err != nil || !found {
			continue
		}

		tool := "sudo docker compose"
		if result, err := c.executor.Exec(ctx, "sudo docker compose version"); err != nil || result.ExitCode != 0 {
			tool = "sudo docker-compose"
		}

		c.run(ctx, fmt.Sprintf("cd %s && %s down --remove-orphans || true",
			security.ShellEscape(appDir), tool), "compose down")
		return
	}
}

func (c *Cleaner) removeNetwork(ctx context.Context, identity string) {
	network := identity + "_default"
	c.run(ctx, fmt.Sprintf("sudo docker network rm %s 2>/dev/null || true",
		security.ShellEscape(network)), "removing network "+network)
}

func (c *Cleaner) removeImage(ctx context.Context, identity string) {
	image := constants.ImageName(identity)
	c.run(ctx, fmt.Sprintf("sudo docker rmi %s 2>/dev/null || true",
		security.ShellEscape(image)), "removing image "+image)
}

// reloadNginx refreshes the proxy after site removal, but only when the
// remaining configuration validates. A host with nginx uninstalled is fine.
func (c *Cleaner) reloadNginx(ctx context.Context) {
	result, err := c.executor.Exec(ctx, "sudo nginx -t 2>/dev/null && sudo systemctl reload nginx || true")
	if err != nil {
		c.log.Warnf("nginx reload skipped: %v", err)
		return
	}
	if result.ExitCode != 0 {
		c.log.Warnf("nginx reload skipped: %s", strings.TrimSpace(result.Stderr))
	}
}

// run executes a best-effort cleanup step. Failures are logged, never fatal.
func (c *Cleaner) run(ctx context.Context, cmd, what string) {
	c.log.Infof("cleanup: %s", what)
	result, err := c.executor.Exec(ctx, cmd)
	if err != nil {
		c.log.Warnf("%s failed: %v", what, err)
		return
	}
	if result.ExitCode != 0 {
		c.log.Warnf("%s failed: %s", what, strings.TrimSpace(result.Stderr))
	}
}

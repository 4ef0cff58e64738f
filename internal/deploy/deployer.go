package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// Deployer builds and starts the application on the target host.
type Deployer struct {
	executor ssh.Executor
	log      *logging.RunLogger
	sleep    func(time.Duration)
}

// NewDeployer creates a deployer bound to one connected host.
func NewDeployer(executor ssh.Executor, log *logging.RunLogger) *Deployer {
	return &Deployer{
		executor: executor,
		log:      log,
		sleep:    time.Sleep,
	}
}

// Deploy runs the appropriate deployment path for the detected mode, waits
// for containers to settle, then reports what is running.
func (d *Deployer) Deploy(ctx context.Context, mode Mode, identity, port string) error {
	switch mode {
	case ModeCompose:
		if err := d.deployCompose(ctx, identity); err != nil {
			return err
		}
	case ModeDockerfile:
		if err := d.deployDockerfile(ctx, identity, port); err != nil {
			return err
		}
	default:
		return exitcode.New(exitcode.Generic, "nothing to deploy for %s", identity)
	}

	d.sleep(constants.DeploySettleDelay)
	return d.report(ctx, identity)
}

// resolveComposeTool finds a usable compose command on the host: the plugin
// form first, then the legacy standalone binary.
func (d *Deployer) resolveComposeTool(ctx context.Context) (string, error) {
	result, err := d.executor.Exec(ctx, "sudo docker compose version")
	if err == nil && result.ExitCode == 0 {
		return "sudo docker compose", nil
	}

	result, err = d.executor.Exec(ctx, "command -v docker-compose")
	if err == nil && result.ExitCode == 0 {
		return "sudo docker-compose", nil
	}

	return "", exitcode.New(exitcode.NoComposeTool,
		"the repository uses a compose descriptor but neither the docker compose plugin nor docker-compose is available on the host")
}

// deployCompose pulls referenced images (best effort) and brings the stack
// up. The build happens on the host; --remove-orphans drops services deleted
// from the descriptor since the last run.
func (d *Deployer) deployCompose(ctx context.Context, identity string) error {
	tool, err := d.resolveComposeTool(ctx)
	if err != nil {
		return err
	}

	appDir := security.ShellEscape(constants.AppDir(identity))

	result, err := d.executor.Exec(ctx, fmt.Sprintf("cd %s && %s pull", appDir, tool))
	if err != nil || result.ExitCode != 0 {
		d.log.Warnf("compose pull failed, continuing with local or built images")
	}

	cmd := fmt.Sprintf("cd %s && %s up -d --build --remove-orphans", appDir, tool)
	d.log.Infof("deploying compose stack: %s", cmd)

	// Streamed so build progress reaches the operator's terminal.
	if err := d.executor.ExecStream(ctx, cmd); err != nil {
		return exitcode.New(exitcode.Generic, "compose up failed: %v", err)
	}

	return nil
}

// deployDockerfile replaces the single application container: remove the
// previous one, rebuild the image from the synced tree, and run it bound to
// loopback only. Port 80 stays exclusive to nginx.
func (d *Deployer) deployDockerfile(ctx context.Context, identity, port string) error {
	container := constants.ContainerName(identity)
	image := constants.ImageName(identity)
	appDir := security.ShellEscape(constants.AppDir(identity))

	if _, err := d.executor.Exec(ctx,
		fmt.Sprintf("sudo docker rm -f %s 2>/dev/null || true", security.ShellEscape(container))); err != nil {
		return exitcode.New(exitcode.Generic, "failed to remove previous container: %v", err)
	}

	buildCmd := fmt.Sprintf("cd %s && sudo docker build -t %s .", appDir, security.ShellEscape(image))
	d.log.Infof("building image: %s", buildCmd)
	// Streamed so build progress reaches the operator's terminal.
	if err := d.executor.ExecStream(ctx, buildCmd); err != nil {
		return exitcode.New(exitcode.Generic, "docker build failed: %v", err)
	}

	runCmd := fmt.Sprintf("sudo docker run -d --name %s --restart always -p 127.0.0.1:%s:%s %s",
		security.ShellEscape(container), port, port, security.ShellEscape(image))
	d.log.Infof("starting container: %s", runCmd)
	result, err := d.executor.Exec(ctx, runCmd)
	if err != nil {
		return exitcode.New(exitcode.Generic, "docker run failed: %v", err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(exitcode.Generic, "docker run failed: %s", strings.TrimSpace(result.Stderr))
	}

	return nil
}

// report logs the running containers for the deployment so the run log
// captures names, status, and port bindings.
func (d *Deployer) report(ctx context.Context, identity string) error {
	cmd := fmt.Sprintf(
		"sudo docker ps --filter name=%s --format 'table {{.Names}}\\t{{.Status}}\\t{{.Ports}}'",
		security.ShellEscape(identity))

	out, err := ssh.ExecOutput(ctx, d.executor, cmd)
	if err != nil {
		d.log.Warnf("failed to list containers: %v", err)
		return nil
	}

	d.log.Infof("running containers for %s:\n%s", identity, out)
	return nil
}

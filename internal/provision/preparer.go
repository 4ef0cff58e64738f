// Package provision brings a Debian-family host to the state the deployment
// needs: Docker with the compose plugin, nginx, and both daemons enabled.
// Every step is safe to repeat on an already-provisioned host.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// HostPreparer installs and enables the runtime stack on the target host.
type HostPreparer struct {
	executor ssh.Executor
	log      *logging.RunLogger
}

// NewHostPreparer creates a preparer bound to one connected host.
func NewHostPreparer(executor ssh.Executor, log *logging.RunLogger) *HostPreparer {
	return &HostPreparer{executor: executor, log: log}
}

// Prepare runs the full provisioning sequence. It verifies the host is
// apt-based first; anything else is unsupported and the run stops there.
func (p *HostPreparer) Prepare(ctx context.Context) error {
	if err := p.checkAptBased(ctx); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"updating package index", p.updatePackages},
		{"installing Docker", p.installDocker},
		{"installing compose tooling", p.installCompose},
		{"installing nginx", p.installNginx},
		{"enabling services", p.enableServices},
		{"granting docker group membership", p.addDockerGroup},
	}

	for _, step := range steps {
		p.log.Infof("provision: %s", step.name)
		if err := step.fn(ctx); err != nil {
			return err
		}
	}

	return nil
}

// checkAptBased refuses to provision hosts without apt-get. The tool only
// knows Debian-family package management.
func (p *HostPreparer) checkAptBased(ctx context.Context) error {
	result, err := p.executor.Exec(ctx, "command -v apt-get")
	if err != nil {
		return exitcode.New(exitcode.UnsupportedHost, "failed to inspect host: %v", err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(exitcode.UnsupportedHost,
			"target host has no apt-get; only Debian-family hosts are supported")
	}
	return nil
}

func (p *HostPreparer) updatePackages(ctx context.Context) error {
	cmd := "sudo DEBIAN_FRONTEND=noninteractive apt-get update -qq && " +
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -qq curl ca-certificates"
	return p.runFatal(ctx, cmd, "package index update")
}

// installDocker uses the official convenience script, but only when the
// docker binary is absent. Reruns are a no-op.
func (p *HostPreparer) installDocker(ctx context.Context) error {
	result, err := p.executor.Exec(ctx, "command -v docker")
	if err != nil {
		return exitcode.New(exitcode.Generic, "failed to check for docker: %v", err)
	}
	if result.ExitCode == 0 {
		p.log.Infof("docker already installed")
		return nil
	}

	// Streamed: the convenience script runs for minutes and the operator
	// should see it working.
	if err := p.executor.ExecStream(ctx, "curl -fsSL https://get.docker.com | sudo sh"); err != nil {
		return exitcode.New(exitcode.Generic, "docker installation failed: %v", err)
	}
	return nil
}

// installCompose prefers the docker compose plugin; when the plugin package
// is unavailable it falls back to the legacy docker-compose binary. Neither
// failing is fatal here: the deploy step resolves the tool again and fails
// with a dedicated code if nothing usable exists.
func (p *HostPreparer) installCompose(ctx context.Context) error {
	result, err := p.executor.Exec(ctx, "docker compose version")
	if err == nil && result.ExitCode == 0 {
		p.log.Infof("docker compose plugin present")
		return nil
	}

	result, err = p.executor.Exec(ctx,
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -qq docker-compose-plugin")
	if err == nil && result.ExitCode == 0 {
		return nil
	}
	p.log.Warnf("compose plugin install failed, trying legacy docker-compose")

	result, err = p.executor.Exec(ctx,
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -qq docker-compose")
	if err == nil && result.ExitCode == 0 {
		return nil
	}

	p.log.Warnf("no compose tooling could be installed; a Dockerfile-only deployment will still work")
	return nil
}

// installNginx installs nginx only when the binary is absent, so reruns
// never touch an existing installation.
func (p *HostPreparer) installNginx(ctx context.Context) error {
	result, err := p.executor.Exec(ctx, "command -v nginx")
	if err != nil {
		return exitcode.New(exitcode.Generic, "failed to check for nginx: %v", err)
	}
	if result.ExitCode == 0 {
		p.log.Infof("nginx already installed")
		return nil
	}

	return p.runFatal(ctx,
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -qq nginx", "nginx installation")
}

func (p *HostPreparer) enableServices(ctx context.Context) error {
	for _, svc := range []string{"docker", "nginx"} {
		cmd := fmt.Sprintf("sudo systemctl enable %s && sudo systemctl start %s", svc, svc)
		if err := p.runFatal(ctx, cmd, svc+" service startup"); err != nil {
			return err
		}
	}
	return nil
}

// addDockerGroup lets the deploy user run docker without sudo. Membership
// only applies to new sessions, so provisioning keeps sudo on docker
// commands regardless; this is for the operator's own shells.
func (p *HostPreparer) addDockerGroup(ctx context.Context) error {
	result, err := p.executor.Exec(ctx, "sudo usermod -aG docker \"$USER\" || true")
	if err != nil {
		p.log.Warnf("docker group membership failed: %v", err)
		return nil
	}
	if result.ExitCode != 0 {
		p.log.Warnf("docker group membership failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

func (p *HostPreparer) runFatal(ctx context.Context, cmd, what string) error {
	result, err := p.executor.Exec(ctx, cmd)
	if err != nil {
		return exitcode.New(exitcode.Generic, "%s failed: %v", what, err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(exitcode.Generic, "%s failed: %s", what, strings.TrimSpace(result.Stderr))
	}
	return nil
}

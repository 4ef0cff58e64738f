// Package nginx manages the reverse-proxy site on the target host: one
// server block per deployment, listening on port 80 and proxying to the
// loopback-bound application container.
package nginx

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

const siteTemplate = `server {
    listen 80;
    server_name _;

    location / {
        proxy_pass http://127.0.0.1:{{.Port}};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}
`

var siteTmpl = template.Must(template.New("site").Parse(siteTemplate))

// RenderSiteConfig produces the server block for a deployment's app port.
func RenderSiteConfig(port string) (string, error) {
	var buf bytes.Buffer
	if err := siteTmpl.Execute(&buf, struct{ Port string }{Port: port}); err != nil {
		return "", fmt.Errorf("failed to render site config: %w", err)
	}
	return buf.String(), nil
}

// Configurer installs and activates the site for one deployment.
type Configurer struct {
	executor ssh.Executor
	log      *logging.RunLogger
}

// NewConfigurer creates a configurer bound to one connected host.
func NewConfigurer(executor ssh.Executor, log *logging.RunLogger) *Configurer {
	return &Configurer{executor: executor, log: log}
}

// Configure writes the site file, disables the distribution default site,
// enables the new site, validates the whole configuration, and reloads
// nginx. A failed validation aborts before any reload so a broken config
// never takes down running sites.
func (c *Configurer) Configure(ctx context.Context, identity, port string) error {
	content, err := RenderSiteConfig(port)
	if err != nil {
		return exitcode.Wrap(exitcode.Generic, err)
	}

	sitePath := constants.SiteAvailablePath(identity)
	if err := ssh.SudoUploadContent(ctx, c.executor, content, sitePath); err != nil {
		return exitcode.New(exitcode.Generic, "failed to write nginx site %s: %v", sitePath, err)
	}
	c.log.Infof("wrote nginx site %s (proxying to 127.0.0.1:%s)", sitePath, port)

	if err := c.removeDefaultSite(ctx); err != nil {
		return err
	}

	enablePath := constants.SiteEnabledPath(identity)
	cmd := fmt.Sprintf("sudo ln -sfn %s %s",
		security.ShellEscape(sitePath), security.ShellEscape(enablePath))
	if err := c.runFatal(ctx, cmd, "enabling nginx site"); err != nil {
		return err
	}

	if err := c.validate(ctx); err != nil {
		return err
	}

	return c.runFatal(ctx, "sudo systemctl reload nginx", "reloading nginx")
}

// removeDefaultSite drops the distribution's default server block so it
// cannot shadow the deployment on port 80. Absence is fine.
func (c *Configurer) removeDefaultSite(ctx context.Context) error {
	cmd := fmt.Sprintf("sudo rm -f %s %s",
		security.ShellEscape(constants.NginxDefaultActive),
		security.ShellEscape(constants.NginxDefaultAvail))
	return c.runFatal(ctx, cmd, "removing default nginx site")
}

// validate runs nginx -t. On failure the full diagnostic goes into the
// error so the operator sees which directive broke.
func (c *Configurer) validate(ctx context.Context) error {
	result, err := c.executor.Exec(ctx, "sudo nginx -t")
	if err != nil {
		return exitcode.New(exitcode.Generic, "nginx validation failed: %v", err)
	}
	if result.ExitCode != 0 {
		// nginx -t reports on stderr.
		return exitcode.New(exitcode.Generic, "nginx configuration is invalid, not reloading: %s",
			strings.TrimSpace(result.Stderr))
	}
	return nil
}

func (c *Configurer) runFatal(ctx context.Context, cmd, what string) error {
	result, err := c.executor.Exec(ctx, cmd)
	if err != nil {
		return exitcode.New(exitcode.Generic, "%s failed: %v", what, err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(exitcode.Generic, "%s failed: %s", what, strings.TrimSpace(result.Stderr))
	}
	return nil
}

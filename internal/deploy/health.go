package deploy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// Checker validates the deployed stack end to end: daemons active, the
// proxy answering on the host itself, and (best effort) reachable from
// outside.
type Checker struct {
	executor ssh.Executor
	log      *logging.RunLogger
	client   *http.Client
}

// NewChecker creates a checker bound to one connected host.
func NewChecker(executor ssh.Executor, log *logging.RunLogger) *Checker {
	return &Checker{
		executor: executor,
		log:      log,
		client:   &http.Client{Timeout: constants.HealthProbeTimeout},
	}
}

// SetHTTPClient replaces the external probe client. Used by tests.
func (c *Checker) SetHTTPClient(client *http.Client) {
	c.client = client
}

// Check runs the post-deployment validation sequence. Daemon and local
// proxy failures are fatal with dedicated codes; the external probe only
// warns, since firewalls between operator and host are not a deployment
// defect.
func (c *Checker) Check(ctx context.Context, host string) error {
	if err := c.serviceActive(ctx, "docker", exitcode.DockerInactive); err != nil {
		return err
	}
	if err := c.serviceActive(ctx, "nginx", exitcode.ProxyInactive); err != nil {
		return err
	}
	if err := c.localProxyResponds(ctx); err != nil {
		return err
	}

	c.externalProbe(host)
	return nil
}

func (c *Checker) serviceActive(ctx context.Context, service string, code int) error {
	result, err := c.executor.Exec(ctx, fmt.Sprintf("systemctl is-active %s", service))
	if err != nil {
		return exitcode.New(code, "failed to check %s: %v", service, err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(code, "%s is not active: %s", service,
			strings.TrimSpace(result.Stdout))
	}
	c.log.Infof("%s is active", service)
	return nil
}

// localProxyResponds curls port 80 on the host itself. This proves the
// whole chain (nginx, proxy_pass, container) without depending on the
// network between operator and host.
func (c *Checker) localProxyResponds(ctx context.Context) error {
	cmd := fmt.Sprintf("curl -s -o /dev/null --max-time %d http://127.0.0.1:80/",
		int(constants.HealthProbeTimeout.Seconds()))

	result, err := c.executor.Exec(ctx, cmd)
	if err != nil {
		return exitcode.New(exitcode.HealthFailed, "local health probe failed: %v", err)
	}
	if result.ExitCode != 0 {
		return exitcode.New(exitcode.HealthFailed,
			"the application did not respond on port 80 from the host itself (curl exit %d)",
			result.ExitCode)
	}
	c.log.Infof("application responds on 127.0.0.1:80")
	return nil
}

func (c *Checker) externalProbe(host string) {
	url := fmt.Sprintf("http://%s/", host)
	resp, err := c.client.Get(url)
	if err != nil {
		c.log.Warnf("external probe of %s failed (possibly firewalled): %v", url, err)
		return
	}
	defer resp.Body.Close()
	c.log.Infof("external probe of %s: %s", url, resp.Status)
}

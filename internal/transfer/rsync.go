// Package transfer mirrors the staged working copy onto the target host
// with rsync over SSH.
package transfer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// RsyncRunner executes an rsync invocation and returns combined output.
// Injected so tests never spawn a process.
type RsyncRunner func(ctx context.Context, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "rsync", args...).CombinedOutput()
}

// Synchronizer pushes a local directory to the application directory on
// the target host.
type Synchronizer struct {
	user    string
	host    string
	port    int
	keyPath string
	run     RsyncRunner
	log     *logging.RunLogger
}

// NewSynchronizer creates a synchronizer for one target host.
func NewSynchronizer(user, host string, port int, keyPath string, log *logging.RunLogger) *Synchronizer {
	return &Synchronizer{
		user:    user,
		host:    host,
		port:    port,
		keyPath: keyPath,
		run:     defaultRunner,
		log:     log,
	}
}

// SetRunner replaces the rsync invocation function. Used by tests.
func (s *Synchronizer) SetRunner(run RsyncRunner) {
	s.run = run
}

// BuildArgs assembles the rsync argument list for mirroring localDir into
// the remote application directory. The .git directory and run logs stay
// local; --delete keeps the remote tree an exact mirror. keyPath is the
// already-materialized private key file, empty for agent/default keys.
func (s *Synchronizer) BuildArgs(localDir, identity, keyPath string) []string {
	remote := fmt.Sprintf("%s@%s:%s/", s.user, s.host, constants.AppDir(identity))

	sshCmd := fmt.Sprintf(
		"ssh -p %d -o BatchMode=yes -o StrictHostKeyChecking=accept-new -o ConnectTimeout=%d",
		s.port, int(constants.SSHConnectTimeout.Seconds()))
	if keyPath != "" {
		sshCmd += " -i " + keyPath
	}

	return []string{
		"-az",
		"--delete",
		"--exclude", ".git",
		"--exclude", "deploy_*.log",
		"-e", sshCmd,
		strings.TrimSuffix(localDir, "/") + "/",
		remote,
	}
}

// Sync prepares the remote application directory and mirrors the working
// copy into it.
func (s *Synchronizer) Sync(ctx context.Context, executor ssh.Executor, localDir, identity string) error {
	if err := s.prepareRemoteDir(ctx, executor, identity); err != nil {
		return err
	}

	keyPath, removeKey, err := materializeKey(s.keyPath)
	if err != nil {
		return exitcode.Wrap(exitcode.RsyncFailure, err)
	}
	defer removeKey()

	args := s.BuildArgs(localDir, identity, keyPath)
	s.log.Infof("rsync %s", strings.Join(args, " "))

	out, err := s.run(ctx, args...)
	if err != nil {
		return exitcode.New(exitcode.RsyncFailure, "rsync to %s failed: %s",
			s.host, strings.TrimSpace(security.SanitizeCommandForLog(string(out))))
	}

	s.log.Infof("synchronized %s to %s", localDir, constants.AppDir(identity))
	return nil
}

// materializeKey resolves the private key file handed to the spawned ssh
// process. A key supplied as content via AUTODEPLOY_SSH_KEY is written to a
// 0600 temp file for the duration of the transfer; the returned func
// removes it.
func materializeKey(keyPath string) (string, func(), error) {
	noop := func() {}

	if keyPath != "" {
		return ssh.ExpandKeyPath(keyPath), noop, nil
	}

	envKey := os.Getenv("AUTODEPLOY_SSH_KEY")
	if envKey == "" {
		return "", noop, nil
	}

	f, err := os.CreateTemp("", "autodeploy_key_*")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp key file: %w", err)
	}
	remove := func() { os.Remove(f.Name()) }

	if err := f.Chmod(0600); err != nil {
		f.Close()
		remove()
		return "", noop, fmt.Errorf("failed to restrict temp key file: %w", err)
	}
	if !strings.HasSuffix(envKey, "\n") {
		envKey += "\n"
	}
	if _, err := f.WriteString(envKey); err != nil {
		f.Close()
		remove()
		return "", noop, fmt.Errorf("failed to write temp key file: %w", err)
	}
	if err := f.Close(); err != nil {
		remove()
		return "", noop, fmt.Errorf("failed to write temp key file: %w", err)
	}

	return f.Name(), remove, nil
}

// prepareRemoteDir creates the application directory and hands ownership to
// the deploy user so rsync can write without sudo.
func (s *Synchronizer) prepareRemoteDir(ctx context.Context, executor ssh.Executor, identity string) error {
	appDir := constants.AppDir(identity)

	cmds := []string{
		fmt.Sprintf("sudo mkdir -p %s", security.ShellEscape(appDir)),
		// Group left to chown's default: the user's primary group may not
		// share the username.
		fmt.Sprintf("sudo chown -R %s: %s",
			security.ShellEscape(s.user), security.ShellEscape(appDir)),
	}

	for _, cmd := range cmds {
		result, err := executor.Exec(ctx, cmd)
		if err != nil {
			return exitcode.New(exitcode.RsyncFailure, "failed to prepare %s: %v", appDir, err)
		}
		if result.ExitCode != 0 {
			return exitcode.New(exitcode.RsyncFailure, "failed to prepare %s: %s",
				appDir, strings.TrimSpace(result.Stderr))
		}
	}

	return nil
}

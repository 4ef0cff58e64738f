// Package git stages the local working copy of the repository to deploy.
// It drives the git CLI; fast-forward-only semantics protect local
// divergence from being silently overwritten.
package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/config"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
)

// CommandRunner executes a git invocation in a directory and returns
// combined output. Injected so tests never touch a real repository.
type CommandRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Stager clones or updates the local working copy for a deployment.
type Stager struct {
	workDir string
	run     CommandRunner
	log     *logging.RunLogger
}

// NewStager creates a stager placing working copies under workDir
// (the current directory when empty).
func NewStager(workDir string, log *logging.RunLogger) *Stager {
	if workDir == "" {
		workDir = "."
	}
	return &Stager{
		workDir: workDir,
		run:     defaultRunner,
		log:     log,
	}
}

// SetRunner replaces the git invocation function. Used by tests.
func (s *Stager) SetRunner(run CommandRunner) {
	s.run = run
}

// Stage ensures a working copy for the configured repository and branch
// exists locally and is current, then verifies it contains something to
// deploy. Returns the working copy path.
func (s *Stager) Stage(ctx context.Context, cfg *config.RunConfig) (string, error) {
	identity, err := cfg.Identity()
	if err != nil {
		return "", exitcode.Wrap(exitcode.InvalidInput, err)
	}

	localDir := filepath.Join(s.workDir, identity)

	if _, err := os.Stat(filepath.Join(localDir, ".git")); err == nil {
		if err := s.update(ctx, localDir, cfg.Branch); err != nil {
			return "", err
		}
	} else {
		if err := s.clone(ctx, localDir, cfg); err != nil {
			return "", err
		}
	}

	if err := s.verifyDeployable(localDir); err != nil {
		return "", err
	}

	return localDir, nil
}

// update refreshes an existing working copy: fetch everything, check out
// the requested branch, then fast-forward only. Divergent history is a hard
// failure; the working copy is left untouched.
func (s *Stager) update(ctx context.Context, localDir, branch string) error {
	s.log.Infof("updating existing working copy at %s", localDir)

	steps := [][]string{
		{"fetch", "--all", "--prune"},
		{"checkout", branch},
		{"pull", "--ff-only", "origin", branch},
	}

	for _, args := range steps {
		out, err := s.run(ctx, localDir, args...)
		if err != nil {
			if args[0] == "pull" {
				return exitcode.New(exitcode.GitFailure,
					"fast-forward pull of %q failed, local history has diverged from origin: %s",
					branch, strings.TrimSpace(string(out)))
			}
			return exitcode.New(exitcode.GitFailure, "git %s failed: %s",
				strings.Join(args, " "), strings.TrimSpace(string(out)))
		}
		s.log.Infof("git %s", strings.Join(args, " "))
	}

	return nil
}

// clone performs a fresh branch-scoped clone. The credential lives in the
// URL's user-info for the duration of the transfer only; every logged form
// is masked first.
func (s *Stager) clone(ctx context.Context, localDir string, cfg *config.RunConfig) error {
	authURL, err := security.AuthenticatedURL(cfg.RepoURL, cfg.Token)
	if err != nil {
		return exitcode.Wrap(exitcode.InvalidInput, err)
	}

	args := []string{"clone", "--branch", cfg.Branch, "--single-branch", authURL, localDir}
	s.log.Infof("git %s", security.SanitizeCommandForLog(strings.Join(args, " ")))

	out, err := s.run(ctx, s.workDir, args...)
	if err != nil {
		masked := security.SanitizeCommandForLog(strings.TrimSpace(string(out)))
		return exitcode.New(exitcode.GitFailure, "git clone of %s failed: %s",
			security.MaskCredentialURL(cfg.RepoURL), masked)
	}

	s.log.Infof("cloned %s (branch %s) into %s",
		security.MaskCredentialURL(cfg.RepoURL), cfg.Branch, localDir)
	return nil
}

// verifyDeployable checks the working copy contains at least one recognized
// build descriptor. Without one there is nothing to deploy, and the run
// stops before any remote host contact.
func (s *Stager) verifyDeployable(localDir string) error {
	if HasBuildDescriptor(localDir) {
		return nil
	}
	return exitcode.New(exitcode.GitFailure,
		"no build descriptor found in %s (expected docker-compose.yml, docker-compose.yaml, or Dockerfile)",
		localDir)
}

// HasBuildDescriptor reports whether a directory contains a compose
// descriptor or a Dockerfile.
func HasBuildDescriptor(dir string) bool {
	names := append([]string{}, constants.ComposeFiles...)
	names = append(names, constants.Dockerfile)
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

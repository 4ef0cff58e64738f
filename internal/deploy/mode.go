// Package deploy starts, inspects, and tears down the application on the
// target host. A deployment is driven either by a compose descriptor or by
// a single Dockerfile; the mode is decided once per run from the synced
// remote tree.
package deploy

import (
	"context"
	"path/filepath"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/constants"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

// Mode identifies how the application is built and started.
type Mode int

const (
	// ModeNone means the synced tree carries no recognized build descriptor.
	ModeNone Mode = iota
	// ModeCompose drives the deployment through a compose descriptor.
	ModeCompose
	// ModeDockerfile builds a single image and runs one container.
	ModeDockerfile
)

func (m Mode) String() string {
	switch m {
	case ModeCompose:
		return "compose"
	case ModeDockerfile:
		return "dockerfile"
	default:
		return "none"
	}
}

// DetectMode inspects the synced application directory on the target host
// and picks the deployment mode. Compose descriptors win over a Dockerfile
// when both exist. Returns the mode and the descriptor filename that
// selected it.
func DetectMode(ctx context.Context, executor ssh.Executor, identity string) (Mode, string, error) {
	appDir := constants.AppDir(identity)

	for _, name := range constants.ComposeFiles {
		found, err := ssh.FileExists(ctx, executor, filepath.Join(appDir, name))
		if err != nil {
			return ModeNone, "", exitcode.New(exitcode.Generic, "failed to inspect %s: %v", appDir, err)
		}
		if found {
			return ModeCompose, name, nil
		}
	}

	found, err := ssh.FileExists(ctx, executor, filepath.Join(appDir, constants.Dockerfile))
	if err != nil {
		return ModeNone, "", exitcode.New(exitcode.Generic, "failed to inspect %s: %v", appDir, err)
	}
	if found {
		return ModeDockerfile, constants.Dockerfile, nil
	}

	return ModeNone, "", exitcode.New(exitcode.Generic,
		"no build descriptor found in %s after sync", appDir)
}

package config

import (
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
)

// RunConfig carries every operator-supplied parameter for one run, threaded
// explicitly through each pipeline component. The credential never appears
// in any serialized form of this struct.
type RunConfig struct {
	RepoURL string          `yaml:"repo"`
	Branch  string          `yaml:"branch"`
	Token   security.Secret `yaml:"-"`
	SSHUser string          `yaml:"ssh_user"`
	SSHHost string          `yaml:"host"`
	SSHPort int             `yaml:"ssh_port,omitempty"`
	KeyPath string          `yaml:"key"`
	AppPort string          `yaml:"port"`
}

// Identity returns the deployment identity derived from the repository URL.
// All remote paths, container names, and proxy sites are namespaced by it.
func (c *RunConfig) Identity() (string, error) {
	return security.DeriveIdentity(c.RepoURL)
}

// DefaultRunConfig returns a run configuration with defaults applied.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Branch:  "main",
		SSHPort: 22,
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the optional per-project defaults file. It stores
// stable inputs (repository, target host) so repeated runs skip their
// prompts; it never stores the credential.
const DefaultConfigFile = "autodeploy.yaml"

// LoadRunConfig reads defaults from a yaml file. A missing file is not an
// error: the collector falls back to prompting.
func LoadRunConfig(path string) (*RunConfig, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := DefaultRunConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.SSHPort == 0 {
		cfg.SSHPort = 22
	}

	return cfg, nil
}

// SaveRunConfig persists the collected inputs as defaults for the next run.
func SaveRunConfig(cfg *RunConfig, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// SECURITY: Use 0600 to restrict file access to owner only
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

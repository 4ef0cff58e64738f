package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	verbose bool
	cfgFile string
	yesFlag bool // CI/CD: skip prompts, fail on missing input

	cleanupFlag bool

	// Input flags; anything left empty is prompted for interactively.
	flagRepo    string
	flagToken   string
	flagBranch  string
	flagSSHUser string
	flagHost    string
	flagKey     string
	flagPort    string
)

var rootCmd = &cobra.Command{
	Use:   "autodeploy",
	Short: "Deploy a Dockerized application to a remote host",
	Long: `autodeploy clones a Git repository, provisions a Debian-family host
over SSH with Docker and nginx, syncs the code, starts the application
from its compose file or Dockerfile, and fronts it with an nginx
reverse proxy on port 80.

Run it with no arguments for a guided session; every answer can also be
supplied as a flag for unattended use. Each run appends to a timestamped
deploy_*.log file in the working directory.

CI/CD Environment Variables:
  AUTODEPLOY_TOKEN               Git access token (PAT)
  AUTODEPLOY_SSH_KEY             SSH private key content
  AUTODEPLOY_SKIP_HOST_KEY_CHECK Skip host key verification (true/false)

Exit codes:
  0  success               6  rsync failed
  1  unexpected error      7  unsupported host OS
  2  missing local tool    8  no compose tooling on host
  3  invalid input         9  docker daemon not active
  4  SSH connection failed 10  nginx not active
  5  git operation failed  11  application health check failed`,
	Version:      Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupFlag {
			return runCleanup(cmd, args)
		}
		return runDeploy(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for documentation generation.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed logs")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: autodeploy.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Never prompt; fail if required input is missing")

	rootCmd.Flags().BoolVar(&cleanupFlag, "cleanup", false, "Remove everything a previous deployment created, then exit")

	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "HTTPS repository URL ending in .git")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "Git access token (or AUTODEPLOY_TOKEN)")
	rootCmd.Flags().StringVar(&flagBranch, "branch", "", "Branch to deploy (default: main)")
	rootCmd.Flags().StringVar(&flagSSHUser, "ssh-user", "", "Remote SSH username")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "Remote host (hostname or IP)")
	rootCmd.Flags().StringVar(&flagKey, "key", "", "SSH private key path")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "Port the application listens on")

	rootCmd.SetVersionTemplate(`autodeploy {{.Version}}
`)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// IsYesMode returns true if --yes flag is set (CI/CD mode)
func IsYesMode() bool {
	return yesFlag
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// PrintError prints a formatted error message
func PrintError(msg string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+msg+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	successColor.Printf("✓ "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	infoColor.Printf("→ "+msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	warnColor.Printf("! "+msg+"\n", args...)
}

// PrintVerbose prints a message only in verbose mode
func PrintVerbose(msg string, args ...interface{}) {
	if verbose {
		fmt.Printf("  "+msg+"\n", args...)
	}
}

// PrintVerboseCommand prints a command in verbose mode with sensitive values masked
func PrintVerboseCommand(command string) {
	if verbose {
		fmt.Printf("  Running: %s\n", security.SanitizeCommandForLog(command))
	}
}

package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	// identityRegex validates deployment identities (DNS-compatible)
	// Allows: lowercase letters, numbers, hyphens, underscores (not at start/end)
	// Length: 1-63 characters
	identityRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9_-]{0,61}[a-z0-9])?$`)

	// branchRegex validates git branch names
	// Allows: letters, numbers, dots, underscores, hyphens, forward slashes
	branchRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]{0,254}$`)

	// unixUserRegex validates Unix usernames
	// Standard POSIX username rules
	unixUserRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

	// hostRegex validates hostnames and IPv4 addresses
	hostRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]{0,253}[a-zA-Z0-9])?$`)

	// sensitiveLogPatterns used by SanitizeCommandForLog to mask secrets
	sensitiveLogPatterns = []string{
		"GIT_TOKEN=",
		"GITHUB_TOKEN=",
		"AUTODEPLOY_TOKEN=",
	}

	// credentialURLRegex matches user-info embedded in https URLs inside
	// arbitrary command strings.
	credentialURLRegex = regexp.MustCompile(`https://[^@/\s]+@`)
)

// ValidateRepoURL validates a repository URL. Only HTTPS .git URLs are
// accepted; the credential is injected into user-info for the clone only.
func ValidateRepoURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid repository URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("repository URL must use https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("repository URL has no host")
	}
	if !strings.HasSuffix(u.Path, ".git") {
		return fmt.Errorf("repository URL must end in .git")
	}
	if u.User != nil {
		return fmt.Errorf("repository URL must not embed credentials; supply the token separately")
	}
	return nil
}

// DeriveIdentity computes the deployment identity from a repository URL:
// the URL path basename with the .git suffix stripped. All remote paths and
// names derive from this value.
func DeriveIdentity(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL: %w", err)
	}
	base := u.Path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".git")
	base = strings.ToLower(base)
	if err := ValidateIdentity(base); err != nil {
		return "", fmt.Errorf("cannot derive identity from %q: %w", MaskCredentialURL(rawURL), err)
	}
	return base, nil
}

// ValidateIdentity validates a deployment identity. Identities must be
// DNS-compatible for Docker container and nginx site naming.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if len(identity) > 63 {
		return fmt.Errorf("identity too long (max 63 characters)")
	}
	if !identityRegex.MatchString(identity) {
		return fmt.Errorf("identity must contain only lowercase letters, numbers, hyphens, and underscores (not at start/end)")
	}
	return nil
}

// ValidateBranch validates a git branch name.
func ValidateBranch(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch cannot be empty")
	}
	if strings.Contains(branch, "..") {
		return fmt.Errorf("branch cannot contain '..'")
	}
	if !branchRegex.MatchString(branch) {
		return fmt.Errorf("branch contains invalid characters")
	}
	return nil
}

// ValidateUnixUser validates a Unix username.
func ValidateUnixUser(user string) error {
	if user == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user) > 32 {
		return fmt.Errorf("username too long (max 32 characters)")
	}
	if !unixUserRegex.MatchString(user) {
		return fmt.Errorf("username must start with a lowercase letter or underscore, followed by lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}

// ValidateHost validates an SSH host (hostname or IPv4 address).
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if !hostRegex.MatchString(host) {
		return fmt.Errorf("host contains invalid characters")
	}
	return nil
}

// ValidatePort validates an application port string.
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be numeric")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// ShellEscape escapes a string for safe use in shell commands by wrapping it
// in single quotes and escaping any internal single quotes using the POSIX
// pattern: ' → '\''
func ShellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// SanitizeCommandForLog masks sensitive values in commands before logging.
// This prevents credentials from leaking into verbose output or log files.
func SanitizeCommandForLog(cmd string) string {
	result := credentialURLRegex.ReplaceAllString(cmd, "https://"+Mask+"@")

	for _, pattern := range sensitiveLogPatterns {
		searchFrom := 0
		for {
			idx := strings.Index(result[searchFrom:], pattern)
			if idx == -1 {
				break
			}
			absIdx := searchFrom + idx
			valueStart := absIdx + len(pattern)
			valueEnd := findValueEnd(result, valueStart)
			result = result[:valueStart] + Mask + result[valueEnd:]
			searchFrom = valueStart + len(Mask)
		}
	}

	return result
}

// findValueEnd finds where a shell value ends (handles quoted and unquoted values)
func findValueEnd(s string, start int) int {
	if start >= len(s) {
		return start
	}

	if s[start] == '\'' {
		end := strings.Index(s[start+1:], "'")
		if end == -1 {
			return len(s)
		}
		return start + end + 2
	}

	if s[start] == '"' {
		end := strings.Index(s[start+1:], "\"")
		if end == -1 {
			return len(s)
		}
		return start + end + 2
	}

	for i := start; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' {
			return i
		}
	}
	return len(s)
}

package security

import (
	"strings"
	"testing"
)

func TestValidateRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https git url", "https://github.com/acme/sample-api.git", false},
		{"valid gitlab url", "https://gitlab.com/group/sub/project.git", false},
		{"empty", "", true},
		{"http scheme", "http://github.com/acme/sample-api.git", true},
		{"ssh scheme", "ssh://git@github.com/acme/sample-api.git", true},
		{"scp style", "git@github.com:acme/sample-api.git", true},
		{"missing .git suffix", "https://github.com/acme/sample-api", true},
		{"embedded credential", "https://tok@github.com/acme/sample-api.git", true},
		{"no host", "https:///acme/sample-api.git", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestDeriveIdentity(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"simple repo", "https://github.com/acme/sample-api.git", "sample-api", false},
		{"nested path", "https://gitlab.com/group/sub/my-stack.git", "my-stack", false},
		{"uppercase normalized", "https://github.com/acme/Sample-API.git", "sample-api", false},
		{"underscore kept", "https://github.com/acme/my_app.git", "my_app", false},
		{"empty basename", "https://github.com/.git", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveIdentity(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeriveIdentity(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DeriveIdentity(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		wantErr  bool
	}{
		{"valid", "sample-api", false},
		{"single char", "a", false},
		{"empty", "", true},
		{"uppercase", "Sample", true},
		{"leading hyphen", "-app", true},
		{"trailing hyphen", "app-", true},
		{"too long", strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(tt.identity)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentity(%q) error = %v, wantErr %v", tt.identity, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBranch(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		wantErr bool
	}{
		{"main", "main", false},
		{"feature branch", "feature/new-login", false},
		{"release tag style", "release-1.2.3", false},
		{"empty", "", true},
		{"parent traversal", "../etc", true},
		{"shell chars", "main; rm -rf /", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranch(tt.branch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBranch(%q) error = %v, wantErr %v", tt.branch, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnixUser(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		wantErr bool
	}{
		{"valid", "ubuntu", false},
		{"underscore prefix", "_deploy", false},
		{"empty", "", true},
		{"uppercase", "Ubuntu", true},
		{"too long", strings.Repeat("a", 33), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnixUser(tt.user)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUnixUser(%q) error = %v, wantErr %v", tt.user, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"hostname", "vps.example.com", false},
		{"ipv4", "203.0.113.10", false},
		{"empty", "", true},
		{"space", "bad host", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHost(%q) error = %v, wantErr %v", tt.host, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"valid", "8000", false},
		{"max", "65535", false},
		{"empty", "", true},
		{"zero", "0", true},
		{"too large", "65536", true},
		{"non-numeric", "80a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePort(%q) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "'hello'"},
		{"with space", "hello world", "'hello world'"},
		{"with single quote", "it's", "'it'\\''s'"},
		{"empty", "", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShellEscape(tt.input)
			if got != tt.want {
				t.Errorf("ShellEscape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeCommandForLog(t *testing.T) {
	tests := []struct {
		name       string
		cmd        string
		mustMask   []string
		mustRemain []string
	}{
		{
			name:       "credential url masked",
			cmd:        "git clone --branch main https://tok123@github.com/acme/sample-api.git",
			mustMask:   []string{"tok123"},
			mustRemain: []string{"git clone", "github.com/acme/sample-api.git"},
		},
		{
			name:       "token env masked",
			cmd:        "GIT_TOKEN=abc123 git fetch --all",
			mustMask:   []string{"abc123"},
			mustRemain: []string{"git fetch --all"},
		},
		{
			name:       "quoted token masked",
			cmd:        "AUTODEPLOY_TOKEN='se cret' ./run",
			mustMask:   []string{"se cret"},
			mustRemain: []string{"./run"},
		},
		{
			name:       "plain command untouched",
			cmd:        "docker ps --format '{{.Names}}'",
			mustMask:   nil,
			mustRemain: []string{"docker ps --format '{{.Names}}'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCommandForLog(tt.cmd)
			for _, secret := range tt.mustMask {
				if strings.Contains(got, secret) {
					t.Errorf("sanitized command still contains %q: %s", secret, got)
				}
			}
			for _, keep := range tt.mustRemain {
				if !strings.Contains(got, keep) {
					t.Errorf("sanitized command lost %q: %s", keep, got)
				}
			}
		})
	}
}

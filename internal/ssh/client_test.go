package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("vps.example.com", "deploy", 0, "")
	if c.Port != 22 {
		t.Errorf("expected default port 22, got %d", c.Port)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", c.timeout)
	}
	if c.IsConnected() {
		t.Error("new client should not be connected")
	}
}

func TestWithTimeout(t *testing.T) {
	c := NewClient("vps.example.com", "deploy", 2222, "", WithTimeout(5*time.Second))
	if c.timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", c.timeout)
	}
	if c.Port != 2222 {
		t.Errorf("expected port 2222, got %d", c.Port)
	}
}

func TestExpandKeyPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tilde expanded", "~/.ssh/id_ed25519", filepath.Join(home, ".ssh", "id_ed25519")},
		{"absolute untouched", "/etc/keys/deploy", "/etc/keys/deploy"},
		{"relative untouched", "keys/deploy", "keys/deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandKeyPath(tt.input)
			if got != tt.want {
				t.Errorf("ExpandKeyPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAppendKnownHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known_hosts")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to seed known_hosts: %v", err)
	}

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("failed to convert key: %v", err)
	}

	if err := appendKnownHost(path, "vps.example.com:22", sshPub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read known_hosts: %v", err)
	}
	if !strings.Contains(string(data), "vps.example.com") {
		t.Errorf("known_hosts missing recorded host: %s", data)
	}
	if !strings.Contains(string(data), "ssh-ed25519") {
		t.Errorf("known_hosts missing key type: %s", data)
	}
}

func TestExecNotConnected(t *testing.T) {
	c := NewClient("vps.example.com", "deploy", 22, "")
	if _, err := c.NewSession(); err == nil {
		t.Error("expected error for session on unconnected client")
	}
}

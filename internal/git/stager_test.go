package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/config"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/logging"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/security"
)

type recordedCall struct {
	dir  string
	args []string
}

func testLogger(t *testing.T) *logging.RunLogger {
	t.Helper()
	logger, err := newTestRunLogger(t)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func newTestRunLogger(t *testing.T) (*logging.RunLogger, error) {
	return logging.NewRunLoggerAt(filepath.Join(t.TempDir(), "deploy_test.log"))
}

func testConfig() *config.RunConfig {
	return &config.RunConfig{
		RepoURL: "https://github.com/acme/sample-api.git",
		Branch:  "main",
		Token:   security.NewSecret("tok123"),
	}
}

func TestStage_FreshClone(t *testing.T) {
	workDir := t.TempDir()
	var calls []recordedCall

	stager := NewStager(workDir, testLogger(t))
	stager.SetRunner(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		calls = append(calls, recordedCall{dir: dir, args: args})
		// Simulate the clone producing a deployable tree.
		target := filepath.Join(workDir, "sample-api")
		if err := os.MkdirAll(target, 0755); err != nil {
			return nil, err
		}
		return nil, os.WriteFile(filepath.Join(target, "Dockerfile"), []byte("FROM alpine"), 0644)
	})

	localDir, err := stager.Stage(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if localDir != filepath.Join(workDir, "sample-api") {
		t.Errorf("unexpected local dir: %s", localDir)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 git call, got %d", len(calls))
	}
	args := strings.Join(calls[0].args, " ")
	if !strings.HasPrefix(args, "clone --branch main --single-branch") {
		t.Errorf("unexpected clone args: %s", args)
	}
	if !strings.Contains(args, "tok123@github.com") {
		t.Errorf("clone URL should carry the credential: %s", args)
	}
}

func TestStage_UpdateExisting(t *testing.T) {
	workDir := t.TempDir()
	localDir := filepath.Join(workDir, "sample-api")
	if err := os.MkdirAll(filepath.Join(localDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(localDir, "docker-compose.yml"), []byte("services: {}"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls []recordedCall
	stager := NewStager(workDir, testLogger(t))
	stager.SetRunner(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		calls = append(calls, recordedCall{dir: dir, args: args})
		return nil, nil
	})

	if _, err := stager.Stage(context.Background(), testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"fetch --all --prune",
		"checkout main",
		"pull --ff-only origin main",
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d git calls, got %d", len(want), len(calls))
	}
	for i, w := range want {
		got := strings.Join(calls[i].args, " ")
		if got != w {
			t.Errorf("call %d = %q, want %q", i, got, w)
		}
		if calls[i].dir != localDir {
			t.Errorf("call %d ran in %q, want %q", i, calls[i].dir, localDir)
		}
	}
}

func TestStage_FastForwardConflictFatal(t *testing.T) {
	workDir := t.TempDir()
	localDir := filepath.Join(workDir, "sample-api")
	if err := os.MkdirAll(filepath.Join(localDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	stager := NewStager(workDir, testLogger(t))
	stager.SetRunner(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		if args[0] == "pull" {
			return []byte("fatal: Not possible to fast-forward, aborting."), errors.New("exit status 128")
		}
		return nil, nil
	})

	_, err := stager.Stage(context.Background(), testConfig())
	if err == nil {
		t.Fatal("expected fatal error for divergent history")
	}
	if exitcode.CodeOf(err) != exitcode.GitFailure {
		t.Errorf("exit code = %d, want %d", exitcode.CodeOf(err), exitcode.GitFailure)
	}
	if !strings.Contains(err.Error(), "diverged") {
		t.Errorf("error should mention divergence: %v", err)
	}
}

func TestStage_NoDescriptorFatal(t *testing.T) {
	workDir := t.TempDir()

	stager := NewStager(workDir, testLogger(t))
	stager.SetRunner(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		// Clone succeeds but produces a tree with nothing to deploy.
		return nil, os.MkdirAll(filepath.Join(workDir, "sample-api"), 0755)
	})

	_, err := stager.Stage(context.Background(), testConfig())
	if err == nil {
		t.Fatal("expected error for missing build descriptor")
	}
	if !strings.Contains(err.Error(), "no build descriptor") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStage_CloneFailureMasksCredential(t *testing.T) {
	workDir := t.TempDir()

	stager := NewStager(workDir, testLogger(t))
	stager.SetRunner(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return []byte("fatal: unable to access 'https://tok123@github.com/acme/sample-api.git'"),
			errors.New("exit status 128")
	})

	_, err := stager.Stage(context.Background(), testConfig())
	if err == nil {
		t.Fatal("expected clone error")
	}
	if strings.Contains(err.Error(), "tok123") {
		t.Errorf("error leaked credential: %v", err)
	}
}

func TestHasBuildDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{"compose yml", []string{"docker-compose.yml"}, true},
		{"compose yaml", []string{"docker-compose.yaml"}, true},
		{"dockerfile", []string{"Dockerfile"}, true},
		{"both", []string{"docker-compose.yml", "Dockerfile"}, true},
		{"nothing", []string{"README.md"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			if got := HasBuildDescriptor(dir); got != tt.want {
				t.Errorf("HasBuildDescriptor() = %v, want %v", got, tt.want)
			}
		})
	}
}

package cmd

import (
	"context"
	"testing"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/ssh"
)

func TestVerboseExecutor_EchoesBeforeDispatch(t *testing.T) {
	mock := &ssh.MockExecutor{}
	var echoed []string

	v := newVerboseExecutor(mock)
	v.echo = func(command string) {
		if len(mock.Commands) > len(echoed) {
			t.Errorf("command dispatched before echo: %v", mock.Commands)
		}
		echoed = append(echoed, command)
	}

	if _, err := v.Exec(context.Background(), "sudo docker ps"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ExecStream(context.Background(), "sudo docker build -t app ."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"sudo docker ps", "sudo docker build -t app ."}
	if len(echoed) != len(want) {
		t.Fatalf("echoed %d commands, want %d: %v", len(echoed), len(want), echoed)
	}
	for i, cmd := range want {
		if echoed[i] != cmd {
			t.Errorf("echoed[%d] = %q, want %q", i, echoed[i], cmd)
		}
		if mock.Commands[i] != cmd {
			t.Errorf("dispatched[%d] = %q, want %q", i, mock.Commands[i], cmd)
		}
	}
}

func TestVerboseExecutor_ClosePassesThrough(t *testing.T) {
	mock := &ssh.MockExecutor{}
	v := newVerboseExecutor(mock)

	if err := v.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mock.Closed {
		t.Error("expected Close to reach the wrapped executor")
	}
}

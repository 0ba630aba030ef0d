// Package exec runs external commands (in practice the 1Password `op` CLI)
// behind an interface so that callers can swap in a mock.
package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// CommandExecutor runs name with args and returns its captured output.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor starts processes with os/exec. Env entries are added
// on top of the parent environment; later entries win over inherited ones.
type RealCommandExecutor struct {
	Env []string
}

// Execute runs the command and waits for it. Cancelling ctx kills the process.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor inherits the parent environment unchanged.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// WithEnv returns an executor that adds env ("KEY=value") to every command.
func WithEnv(env ...string) CommandExecutor {
	return &RealCommandExecutor{Env: env}
}

// ExitCode extracts the process exit code from an Execute error, or -1 when
// the process never ran or was killed.
func ExitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

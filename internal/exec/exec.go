// Package exec runs external tools such as llvm-cov.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// ExecutionResult holds the outcome of a command execution.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs external commands. Tests substitute a fake.
type Executor interface {
	Run(command string, args ...string) (*ExecutionResult, error)
}

// CommandExecutor runs commands on the host system.
type CommandExecutor struct {
	// Dir is the working directory; the current directory when empty.
	Dir string
	// Timeout kills the command after the given duration; zero means no limit.
	Timeout time.Duration
}

// NewCommandExecutor creates a CommandExecutor with no timeout.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Run executes the command. A non-zero exit status is reported through
// ExitCode, not as an error; errors mean the command could not be run.
func (e *CommandExecutor) Run(command string, args ...string) (*ExecutionResult, error) {
	ctx := context.Background()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = e.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
	}

	return &ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

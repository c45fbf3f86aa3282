package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// CommandRunner is the interface for running commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExecCommandRunner uses os/exec.
type ExecCommandRunner struct{}

// Run runs a command.
func (ExecCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Executor runs a helper binary with a bounded runtime.
type Executor struct {
	runner     CommandRunner
	binaryPath string
	timeout    time.Duration
}

// NewExecutor creates an executor, resolving binary through PATH when it is not a path.
func NewExecutor(binary string, timeout time.Duration) (*Executor, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("binary not found: %w", err)
	}

	return NewExecutorWithRunner(path, timeout, ExecCommandRunner{}), nil
}

// NewExecutorWithRunner creates an executor with a custom runner.
func NewExecutorWithRunner(binaryPath string, timeout time.Duration, runner CommandRunner) *Executor {
	return &Executor{
		binaryPath: binaryPath,
		timeout:    timeout,
		runner:     runner,
	}
}

// BinaryPath returns the resolved binary.
func (e *Executor) BinaryPath() string {
	return e.binaryPath
}

// Execute runs the command and returns output.
func (e *Executor) Execute(ctx context.Context, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stdout, stderr, err = e.runner.Run(ctx, e.binaryPath, args, stdin)
	if err != nil {
		if len(stderr) > 0 {
			return stdout, stderr, fmt.Errorf("%s: %w: %s", e.binaryPath, err, bytes.TrimSpace(stderr))
		}
		return stdout, stderr, fmt.Errorf("%s: %w", e.binaryPath, err)
	}

	return stdout, stderr, nil
}

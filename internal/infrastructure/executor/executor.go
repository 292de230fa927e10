package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result captures a finished process.
type Result struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// LocalExecutor runs programs directly, without a shell.
type LocalExecutor struct {
	program string
}

// NewLocalExecutor builds an executor for program (for example "git").
func NewLocalExecutor(program string) *LocalExecutor {
	return &LocalExecutor{program: program}
}

// Program returns the executable name.
func (e *LocalExecutor) Program() string {
	return e.program
}

// Run executes the program with args in dir. A non-nil error is returned for
// spawn failures and non-zero exits; Result is populated in both cases.
func (e *LocalExecutor) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	c := exec.CommandContext(ctx, e.program, args...)
	if dir != "" {
		c.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	result := Result{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, err
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

// Available reports whether the program is on PATH.
func (e *LocalExecutor) Available() bool {
	_, err := exec.LookPath(e.program)
	return err == nil
}

// Package executil runs shell commands and reports their exit code together
// with combined stdout/stderr output.
package executil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is the outcome of a completed command. A non-zero ExitCode is a
// normal, representable result, not an error.
type Result struct {
	ExitCode int
	Output   string
}

// Success reports whether the command exited 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner abstracts command execution so callers can be tested without
// spawning processes.
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// Shell runs commands through `sh -c` and captures stdout and stderr into a
// single buffer. The relative ordering of stdout and stderr lines is not
// guaranteed.
type Shell struct {
	// Dir is the working directory for the command. Empty means the
	// process's current directory.
	Dir string
}

// Run executes the command and waits for completion. The returned error is
// reserved for environment-level failures (shell missing, spawn failure,
// context cancelled before completion); a command that ran and exited
// non-zero returns a nil error.
func (s Shell) Run(ctx context.Context, command string) (Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = s.Dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{ExitCode: -1, Output: buf.String()}, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Output: buf.String()}, nil
		}
		return Result{ExitCode: -1, Output: buf.String()}, err
	}

	return Result{ExitCode: 0, Output: buf.String()}, nil
}

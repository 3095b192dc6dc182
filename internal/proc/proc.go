// Package proc spawns external commands one at a time and reports their exit status.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/qobs-build/bootstrap/internal/msg"
)

// Cmd describes a single external invocation. Nil Stdout/Stderr inherit the
// parent's streams.
type Cmd struct {
	Name   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner runs a command to completion. A nonzero exit is reported through
// status, not err; err is reserved for commands that could not be started.
type Runner interface {
	Run(ctx context.Context, c *Cmd) (status int, err error)
}

// ExitError is returned by Check when a command exits nonzero.
type ExitError struct {
	Cmd    string
	Status int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Cmd, e.Status)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	Verbose bool
}

func (e *Exec) Run(ctx context.Context, c *Cmd) (int, error) {
	if e.Verbose {
		msg.Status("Running", "%s", c)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("run %s: %w", c.Name, err)
	}
	return 0, nil
}

// Check runs c and turns a nonzero exit into an *ExitError.
func Check(ctx context.Context, r Runner, c *Cmd) error {
	status, err := r.Run(ctx, c)
	if err != nil {
		return err
	}
	if status != 0 {
		return &ExitError{Cmd: c.String(), Status: status}
	}
	return nil
}

// Output runs c, captures its stdout and fails on a nonzero exit.
func Output(ctx context.Context, r Runner, c *Cmd) ([]byte, error) {
	var buf bytes.Buffer
	c.Stdout = &buf
	if err := Check(ctx, r, c); err != nil {
		return buf.Bytes(), err
	}
	return buf.Bytes(), nil
}

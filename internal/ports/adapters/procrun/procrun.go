package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/forPelevin/insightly/internal/ports"
)

// ExitError reports a command that started but exited non-zero.
type ExitError struct {
	Args   []string
	Code   int
	Stderr []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Args[0], e.Code)
	if s := strings.TrimSpace(string(e.Stderr)); s != "" {
		msg += "\n" + s
	}
	return msg
}

// LaunchError reports a command that could not be started at all.
type LaunchError struct {
	Args []string
	Err  error
}

func (e *LaunchError) Error() string { return e.Err.Error() }

func (e *LaunchError) Unwrap() error { return e.Err }

type Runner struct{}

func New() *Runner { return &Runner{} }

// Run executes args[0] with the remaining args and waits for it, capturing
// stdout and stderr as raw bytes.
func (r *Runner) Run(ctx context.Context, args []string) (ports.RunResult, error) {
	if len(args) == 0 || args[0] == "" {
		return ports.RunResult{}, errors.New("procrun: empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ports.RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExitError{Args: clone(args), Code: exitErr.ExitCode(), Stderr: res.Stderr}
	}
	return res, &LaunchError{Args: clone(args), Err: err}
}

// Stderr returns the captured diagnostic output carried by a run error, or
// the error text when the command never started.
func Stderr(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return string(exitErr.Stderr)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func clone(args []string) []string { return append([]string(nil), args...) }

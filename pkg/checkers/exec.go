// Package checkers holds the per-bucket checkers. Puppet and Ruby files are
// validated by shelling out to their toolchains; data files are parsed in process.
package checkers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Output is the captured result of one external command.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Text returns stderr followed by stdout, trimmed.
func (o Output) Text() string {
	parts := make([]string, 0, 2)
	for _, b := range [][]byte{o.Stderr, o.Stdout} {
		if s := strings.TrimSpace(string(b)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// CommandRunner runs an external tool. A non-zero exit is reported through
// Output.ExitCode; the error is reserved for commands that could not run.
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args, feeding stdin when non-nil.
func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // tool names are fixed, args are file paths
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// syntax runs a validator and records an error diagnostic when it fails.
// It reports whether the file passed.
func syntax(ctx context.Context, r CommandRunner, store diagSink, file string, stdin []byte, name string, args ...string) (bool, error) {
	out, err := r.Run(ctx, stdin, name, args...)
	if err != nil {
		return false, err
	}
	if out.ExitCode == 0 {
		return true, nil
	}
	msg := out.Text()
	if msg == "" {
		msg = fmt.Sprintf("%s exited with status %d", name, out.ExitCode)
	}
	store.Error(file, msg)
	return false, nil
}

// style runs a style tool. Any output, or a failing exit, becomes a warning.
// It reports whether a warning was recorded.
func style(ctx context.Context, r CommandRunner, store diagSink, file, name string, args ...string) (bool, error) {
	out, err := r.Run(ctx, nil, name, args...)
	if err != nil {
		return false, err
	}
	msg := strings.TrimSpace(string(out.Stdout))
	if msg == "" && out.ExitCode != 0 {
		msg = out.Text()
		if msg == "" {
			msg = fmt.Sprintf("%s exited with status %d", name, out.ExitCode)
		}
	}
	if msg == "" {
		return false, nil
	}
	store.Warning(file, msg)
	return true, nil
}

// diagSink is the subset of *diag.Store the helpers write to.
type diagSink interface {
	Error(file, message string)
	Warning(file, message string)
	Clean(file string)
}

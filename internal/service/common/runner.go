//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoElevation is returned when privileged commands are required but no
// elevation mechanism is available.
var ErrNoElevation = errors.New("sudo not found, cannot run privileged commands")

// elevationCommand is the tool used to elevate privileges for system-wide
// artifacts such as the wrapper on the system path.
const elevationCommand = "sudo"

// Runner executes external commands on behalf of installation steps.
// Services depend on this interface so tests can substitute a recorder.
type Runner interface {
	// Run executes a command, streaming its output to the operator.
	Run(ctx context.Context, name string, args ...string) error
	// RunIn executes a command with dir as its working directory.
	RunIn(ctx context.Context, dir, name string, args ...string) error
	// Output executes a command and captures its standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// RunPrivileged executes a command with elevated rights.
	RunPrivileged(ctx context.Context, name string, args ...string) error
	// Prime refreshes elevated credentials up front so later privileged
	// commands do not stall in the middle of the procedure.
	Prime(ctx context.Context) error
	// LookPath reports where a tool lives on the search path.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands on the host. Command output goes to standard
// error: standard output is reserved for reports.
type ExecRunner struct{}

// NewExecRunner creates a host command runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command, streaming its output to the operator.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return r.RunIn(ctx, "", name, args...)
}

// RunIn executes a command with dir as its working directory.
func (r *ExecRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", commandLine(name, args), err)
	}

	return nil
}

// Output executes a command and captures its standard output.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	var buffer bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buffer
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", commandLine(name, args), err)
	}

	return strings.TrimSpace(buffer.String()), nil
}

// RunPrivileged executes a command with elevated rights. When already
// running as root the command is executed directly.
func (r *ExecRunner) RunPrivileged(ctx context.Context, name string, args ...string) error {
	if os.Geteuid() == 0 {
		return r.Run(ctx, name, args...)
	}

	return r.Run(ctx, elevationCommand, append([]string{name}, args...)...)
}

// Prime refreshes elevated credentials. The operator is asked for their
// password here, once, instead of somewhere in the middle of the procedure.
func (r *ExecRunner) Prime(ctx context.Context) error {
	if os.Geteuid() == 0 {
		return nil
	}

	if _, err := r.LookPath(elevationCommand); err != nil {
		return ErrNoElevation
	}

	if err := r.Run(ctx, elevationCommand, "-v"); err != nil {
		return fmt.Errorf("refresh elevated credentials: %w", err)
	}

	return nil
}

// LookPath reports where a tool lives on the search path.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// commandLine renders a command for error messages.
func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}

	return name + " " + strings.Join(args, " ")
}

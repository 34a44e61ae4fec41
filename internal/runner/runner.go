// Package runner executes external commands for the pipeline stages.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// ExecRunner runs commands via os/exec. Stdout and stderr stream to the
// operator's terminal unless the caller captures stdout. The parent
// environment is always inherited; per-call entries are appended on top.
type ExecRunner struct {
	logger hclog.Logger
}

// NewExecRunner creates a runner that logs command invocations.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   "twinctl.exec",
			Level:  hclog.LevelFromString(levelFromEnv()),
			Output: os.Stderr,
		}),
	}
}

func levelFromEnv() string {
	if lvl := os.Getenv("TWIN_LOG_LEVEL"); lvl != "" {
		return strings.ToLower(lvl)
	}
	return "info"
}

// Run executes the command in dir, streaming output to the operator.
func (r *ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Debug("executing command", "command", cmd.String(), "dir", dir)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", commandLine(name, args), err)
	}
	return nil
}

// RunOutput executes the command and captures stdout. Stderr still streams
// to the operator so provisioning-backend diagnostics remain visible.
func (r *ExecRunner) RunOutput(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	var out bytes.Buffer
	cmd.Stdout = &out

	r.logger.Debug("executing command", "command", cmd.String(), "dir", dir)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %q failed: %w", commandLine(name, args), err)
	}
	return out.String(), nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// exitCoder matches *exec.ExitError and any other error carrying a process
// exit status.
type exitCoder interface {
	ExitCode() int
}

// ExitCode extracts the process exit code from a command error, or -1 when
// the command did not run to completion.
func ExitCode(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

// Ensure ExecRunner implements the CommandRunner interface
var _ interfaces.CommandRunner = (*ExecRunner)(nil)

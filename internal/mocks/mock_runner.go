package mocks

import (
	"context"
	"fmt"
	"strings"
)

// ExitError simulates a subprocess exit status carried in a runner error.
type ExitError struct {
	Code int
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the simulated exit status
func (e *ExitError) ExitCode() int {
	return e.Code
}

// MockRunner is a CommandRunner double. Errors and outputs are keyed by a
// prefix of the command line ("terraform workspace select" matches any
// workspace selection), so tests can script subprocess behavior without
// caring about flag ordering further down the line.
type MockRunner struct {
	Tracker *CallTracker[CommandCall]

	Errors  map[string]error
	Outputs map[string]string
}

// NewMockRunner creates a runner mock with its own tracker.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Tracker: NewCallTracker[CommandCall](),
		Errors:  make(map[string]error),
		Outputs: make(map[string]string),
	}
}

// FailOn scripts an error for every command line starting with prefix.
func (m *MockRunner) FailOn(prefix string, err error) {
	m.Errors[prefix] = err
}

// OutputFor scripts captured stdout for every command line starting with
// prefix.
func (m *MockRunner) OutputFor(prefix, output string) {
	m.Outputs[prefix] = output
}

// Run implements the CommandRunner interface
func (m *MockRunner) Run(_ context.Context, dir string, env []string, name string, args ...string) error {
	err := m.errorFor(name, args)
	m.Tracker.RecordCall(NewCommandCall(dir, env, name, args, err))
	return err
}

// RunOutput implements the CommandRunner interface
func (m *MockRunner) RunOutput(_ context.Context, dir string, env []string, name string, args ...string) (string, error) {
	err := m.errorFor(name, args)
	m.Tracker.RecordCall(NewCommandCall(dir, env, name, args, err))
	if err != nil {
		return "", err
	}

	line := commandLine(name, args)
	for prefix, output := range m.Outputs {
		if strings.HasPrefix(line, prefix) {
			return output, nil
		}
	}
	return "", nil
}

// CommandLines returns every recorded invocation as a single command line,
// in call order.
func (m *MockRunner) CommandLines() []string {
	calls := m.Tracker.GetCalls()
	lines := make([]string, 0, len(calls))
	for _, call := range calls {
		lines = append(lines, commandLine(call.Name, call.Args))
	}
	return lines
}

func (m *MockRunner) errorFor(name string, args []string) error {
	line := commandLine(name, args)
	for prefix, err := range m.Errors {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

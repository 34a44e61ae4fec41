// Package deployment contains the orchestration state machine: the deploy
// and teardown pipelines, their stage sequencing, and failure handling.
package deployment

import (
	"errors"
	"fmt"
)

// Error is a structured pipeline error with a machine-readable code and the
// stage that produced it.
type Error struct {
	Code    string // Machine-readable error code
	Stage   string // Pipeline stage that failed
	Message string // Human-readable message
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes for the failure taxonomy. Every fatal condition aborts the
// run immediately; there is no automatic retry or rollback.
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeBuild         = "BUILD_ERROR"
	CodeProvisioning  = "PROVISIONING_ERROR"
	CodePublish       = "PUBLISH_ERROR"
	CodePreflight     = "PREFLIGHT_ERROR"
)

// stageError wraps a stage failure with its code and stage name.
func stageError(code, stage string, cause error) *Error {
	return &Error{
		Code:    code,
		Stage:   stage,
		Message: fmt.Sprintf("stage %s failed", stage),
		Cause:   cause,
	}
}

// IsPipelineError checks if an error is a deployment.Error
func IsPipelineError(err error) (*Error, bool) {
	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		return pipeErr, true
	}
	return nil, false
}

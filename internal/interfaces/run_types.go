package interfaces

import (
	"fmt"
	"time"
)

// Environment identifies a deployment target with isolated state and resources.
type Environment string

// Supported environments. Every run is scoped to exactly one of these.
const (
	EnvironmentDev  Environment = "dev"
	EnvironmentTest Environment = "test"
	EnvironmentProd Environment = "prod"
)

// ParseEnvironment validates an environment name from the CLI.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentDev, EnvironmentTest, EnvironmentProd:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("invalid environment %q: must be one of dev, test, prod", s)
	}
}

// String returns the environment name.
func (e Environment) String() string {
	return string(e)
}

// RunContext is the immutable input bundle for a single run. It is created
// once per invocation and never mutated. All paths are absolute and threaded
// explicitly through components; no component changes the process working
// directory.
type RunContext struct {
	Environment Environment
	ProjectName string
	AccountID   string
	Region      string

	// Filesystem roots consumed by the pipeline stages.
	BackendDir   string // backend function source (optional dependency manifest inside)
	TerraformDir string // provisioning definitions, consumed opaquely
	FrontendDir  string // frontend app source
	BuildDir     string // staging and archive output
}

// BackendCoordinates identifies the remote state store for one run: the
// state bucket bound to the account, the state key bound to the environment,
// and the DynamoDB lock table. Derivation is pure; same RunContext always
// yields the same coordinates.
type BackendCoordinates struct {
	Bucket    string
	Key       string
	Region    string
	LockTable string
	Encrypt   bool
}

// StageStatus is the outcome classification of one pipeline stage.
type StageStatus string

// StageStatus constants represent the outcome of a pipeline stage.
const (
	StageStatusSuccess StageStatus = "success"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// StageResult captures the outcome of one pipeline stage. The orchestrator
// consumes these to decide branching and to build the run summary.
type StageResult struct {
	Stage    string
	Status   StageStatus
	Outputs  map[string]string
	Err      error
	Duration time.Duration
}

// Failed reports whether the stage ended in a fatal failure.
func (r StageResult) Failed() bool {
	return r.Status == StageStatusFailed
}

// RunSummary aggregates the results of a full run.
type RunSummary struct {
	Environment  Environment
	Stages       []StageResult
	Outputs      OutputSet
	ArchiveBytes int64
	Warnings     []string
}

// Succeeded reports whether every stage completed without a fatal failure.
// Skipped stages do not count against success.
func (s *RunSummary) Succeeded() bool {
	for _, stage := range s.Stages {
		if stage.Failed() {
			return false
		}
	}
	return true
}

// ArchiveInfo describes a freshly built deployment archive.
type ArchiveInfo struct {
	Path      string
	SizeBytes int64
}

// Package config loads run configuration from the environment and derives
// the remote state backend coordinates for a run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// Environment variable names consumed by the CLI. Account and region are
// required for every run; the state bucket and lock table are additionally
// required on the destroy path.
const (
	EnvAccountID     = "AWS_ACCOUNT_ID"
	EnvDefaultRegion = "AWS_DEFAULT_REGION"
	EnvStateBucket   = "TWIN_STATE_BUCKET"
	EnvLockTable     = "TWIN_LOCK_TABLE"
	EnvProjectName   = "TWIN_PROJECT"
	EnvProjectRoot   = "TWIN_ROOT"
)

// DefaultProjectName is used when TWIN_PROJECT is not set and no project
// argument is given on the command line.
const DefaultProjectName = "twin"

// Directory layout under the project root. The provisioning definitions and
// application sources are external collaborators consumed at these paths.
const (
	backendDirName   = "backend"
	terraformDirName = "terraform"
	frontendDirName  = "frontend"
	buildDirName     = "build"
)

// MissingVarError reports a required environment variable that is not set.
// It is a configuration error: fatal before any stage runs.
type MissingVarError struct {
	Name string
}

// Error implements the error interface
func (e *MissingVarError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Name)
}

// LoadRunContext builds the immutable RunContext for a run. project may be
// empty, in which case TWIN_PROJECT and then the default apply.
func LoadRunContext(env interfaces.Environment, project string) (*interfaces.RunContext, error) {
	accountID := os.Getenv(EnvAccountID)
	if accountID == "" {
		return nil, &MissingVarError{Name: EnvAccountID}
	}
	region := os.Getenv(EnvDefaultRegion)
	if region == "" {
		return nil, &MissingVarError{Name: EnvDefaultRegion}
	}

	if project == "" {
		project = os.Getenv(EnvProjectName)
	}
	if project == "" {
		project = DefaultProjectName
	}

	root := os.Getenv(EnvProjectRoot)
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	return &interfaces.RunContext{
		Environment:  env,
		ProjectName:  project,
		AccountID:    accountID,
		Region:       region,
		BackendDir:   filepath.Join(root, backendDirName),
		TerraformDir: filepath.Join(root, terraformDirName),
		FrontendDir:  filepath.Join(root, frontendDirName),
		BuildDir:     filepath.Join(root, buildDirName),
	}, nil
}

// RequireDestroyVars validates the extra environment variables the destroy
// path needs before any stage runs.
func RequireDestroyVars() error {
	if os.Getenv(EnvStateBucket) == "" {
		return &MissingVarError{Name: EnvStateBucket}
	}
	if os.Getenv(EnvLockTable) == "" {
		return &MissingVarError{Name: EnvLockTable}
	}
	return nil
}

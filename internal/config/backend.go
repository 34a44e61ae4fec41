package config

import (
	"fmt"
	"os"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// DeriveBackendCoordinates computes the remote state coordinates for a run.
// It is pure: the same RunContext always yields the same coordinates. The
// state bucket is bound to the account, the state key to the environment,
// and the lock table to the project.
func DeriveBackendCoordinates(rc *interfaces.RunContext) interfaces.BackendCoordinates {
	return interfaces.BackendCoordinates{
		Bucket:    fmt.Sprintf("%s-terraform-state-%s", rc.ProjectName, rc.AccountID),
		Key:       fmt.Sprintf("env/%s/terraform.tfstate", rc.Environment),
		Region:    rc.Region,
		LockTable: fmt.Sprintf("%s-terraform-locks", rc.ProjectName),
		Encrypt:   true,
	}
}

// DestroyBackendCoordinates resolves the state coordinates for a teardown
// run. The bucket and lock table come from the environment so an operator
// can never destroy against guessed coordinates; the key derivation matches
// the deploy path. RequireDestroyVars must have passed first.
func DestroyBackendCoordinates(rc *interfaces.RunContext) interfaces.BackendCoordinates {
	coords := DeriveBackendCoordinates(rc)
	coords.Bucket = os.Getenv(EnvStateBucket)
	coords.LockTable = os.Getenv(EnvLockTable)
	return coords
}

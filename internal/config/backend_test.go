package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twincloud/twinctl/internal/interfaces"
)

func TestDeriveBackendCoordinates(t *testing.T) {
	t.Parallel()

	rc := &interfaces.RunContext{
		Environment: interfaces.EnvironmentDev,
		ProjectName: "twin",
		AccountID:   "123456789012",
		Region:      "eu-west-1",
	}

	coords := DeriveBackendCoordinates(rc)

	assert.Equal(t, "twin-terraform-state-123456789012", coords.Bucket)
	assert.Equal(t, "env/dev/terraform.tfstate", coords.Key)
	assert.Equal(t, "eu-west-1", coords.Region)
	assert.Equal(t, "twin-terraform-locks", coords.LockTable)
	assert.True(t, coords.Encrypt)
}

func TestDeriveBackendCoordinates_KeyPerEnvironment(t *testing.T) {
	t.Parallel()

	// Environments share a bucket but never a state key.
	keys := make(map[string]bool)
	for _, env := range []interfaces.Environment{
		interfaces.EnvironmentDev,
		interfaces.EnvironmentTest,
		interfaces.EnvironmentProd,
	} {
		coords := DeriveBackendCoordinates(&interfaces.RunContext{
			Environment: env,
			ProjectName: "twin",
			AccountID:   "123456789012",
			Region:      "eu-west-1",
		})
		assert.Equal(t, "twin-terraform-state-123456789012", coords.Bucket)
		keys[coords.Key] = true
	}
	assert.Len(t, keys, 3)
}

func TestDeriveBackendCoordinates_Deterministic(t *testing.T) {
	t.Parallel()

	rc := &interfaces.RunContext{
		Environment: interfaces.EnvironmentProd,
		ProjectName: "acme",
		AccountID:   "999999999999",
		Region:      "us-east-1",
	}

	first := DeriveBackendCoordinates(rc)
	second := DeriveBackendCoordinates(rc)
	assert.Equal(t, first, second)
}

func TestDestroyBackendCoordinates(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv(EnvStateBucket, "explicit-state-bucket")
	t.Setenv(EnvLockTable, "explicit-lock-table")

	rc := &interfaces.RunContext{
		Environment: interfaces.EnvironmentTest,
		ProjectName: "twin",
		AccountID:   "123456789012",
		Region:      "eu-west-1",
	}

	coords := DestroyBackendCoordinates(rc)

	assert.Equal(t, "explicit-state-bucket", coords.Bucket)
	assert.Equal(t, "explicit-lock-table", coords.LockTable)
	assert.Equal(t, "env/test/terraform.tfstate", coords.Key)
	assert.Equal(t, "eu-west-1", coords.Region)
	assert.True(t, coords.Encrypt)
}

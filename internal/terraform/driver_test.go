package terraform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/internal/mocks"
)

func testCoordinates() interfaces.BackendCoordinates {
	return interfaces.BackendCoordinates{
		Bucket:    "twin-terraform-state-123456789012",
		Key:       "env/test/terraform.tfstate",
		Region:    "eu-west-1",
		LockTable: "twin-terraform-locks",
		Encrypt:   true,
	}
}

// bindDriver advances a fresh driver to the workspace-selected phase.
func bindDriver(t *testing.T, r *mocks.MockRunner) *Driver {
	t.Helper()
	d := NewDriver(r, "/work/terraform")
	require.NoError(t, d.Init(context.Background(), testCoordinates()))
	require.NoError(t, d.EnsureWorkspace(context.Background(), "test"))
	return d
}

func TestDriverInit(t *testing.T) {
	t.Parallel()

	r := mocks.NewMockRunner()
	d := NewDriver(r, "/work/terraform")
	assert.Equal(t, PhaseUninitialized, d.Phase())

	require.NoError(t, d.Init(context.Background(), testCoordinates()))
	assert.Equal(t, PhaseBackendConfigured, d.Phase())

	lines := r.CommandLines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "init -input=false -reconfigure")
	assert.Contains(t, lines[0], "-backend-config=bucket=twin-terraform-state-123456789012")
	assert.Contains(t, lines[0], "-backend-config=key=env/test/terraform.tfstate")
	assert.Contains(t, lines[0], "-backend-config=region=eu-west-1")
	assert.Contains(t, lines[0], "-backend-config=dynamodb_table=twin-terraform-locks")
	assert.Contains(t, lines[0], "-backend-config=encrypt=true")

	calls := r.Tracker.GetCalls()
	assert.Equal(t, "/work/terraform", calls[0].Dir)
}

func TestDriverInitFailure(t *testing.T) {
	t.Parallel()

	r := mocks.NewMockRunner()
	r.FailOn("terraform init", errors.New("state lock held"))
	d := NewDriver(r, "/work/terraform")

	err := d.Init(context.Background(), testCoordinates())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terraform init failed")
	assert.Equal(t, PhaseFailed, d.Phase())
}

func TestDriverEnsureWorkspace(t *testing.T) {
	t.Parallel()

	t.Run("existing workspace selected without creation", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := bindDriver(t, r)

		assert.Equal(t, PhaseWorkspaceSelected, d.Phase())
		lines := r.CommandLines()
		require.Len(t, lines, 2)
		assert.Equal(t, "terraform workspace select test", lines[1])
	})

	t.Run("missing workspace created on select failure", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.FailOn("terraform workspace select", &mocks.ExitError{Code: 1})
		d := NewDriver(r, "/work/terraform")
		require.NoError(t, d.Init(context.Background(), testCoordinates()))

		require.NoError(t, d.EnsureWorkspace(context.Background(), "dev"))
		assert.Equal(t, PhaseWorkspaceSelected, d.Phase())

		lines := r.CommandLines()
		require.Len(t, lines, 3)
		assert.Equal(t, "terraform workspace select dev", lines[1])
		assert.Equal(t, "terraform workspace new dev", lines[2])
	})

	t.Run("creation failure is fatal", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.FailOn("terraform workspace", &mocks.ExitError{Code: 1})
		d := NewDriver(r, "/work/terraform")
		require.NoError(t, d.Init(context.Background(), testCoordinates()))

		err := d.EnsureWorkspace(context.Background(), "dev")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create workspace dev")
		assert.Equal(t, PhaseFailed, d.Phase())
	})

	t.Run("refused before init", func(t *testing.T) {
		t.Parallel()
		d := NewDriver(mocks.NewMockRunner(), "/work/terraform")
		err := d.EnsureWorkspace(context.Background(), "dev")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot select workspace in phase uninitialized")
	})
}

func TestDriverPlan(t *testing.T) {
	t.Parallel()

	t.Run("empty plan reports no changes", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := bindDriver(t, r)

		changes, err := d.Plan(context.Background())
		require.NoError(t, err)
		assert.False(t, changes)
		assert.Equal(t, PhasePlanned, d.Phase())
		assert.Contains(t, r.CommandLines()[2], "-detailed-exitcode")
	})

	t.Run("exit code two reports changes", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.FailOn("terraform plan", &mocks.ExitError{Code: 2})
		d := bindDriver(t, r)

		changes, err := d.Plan(context.Background())
		require.NoError(t, err)
		assert.True(t, changes)
		assert.Equal(t, PhasePlanned, d.Phase())
	})

	t.Run("other exit codes are fatal", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.FailOn("terraform plan", &mocks.ExitError{Code: 1})
		d := bindDriver(t, r)

		_, err := d.Plan(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "terraform plan failed")
		assert.Equal(t, PhaseFailed, d.Phase())
	})

	t.Run("refused before workspace selection", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := NewDriver(r, "/work/terraform")
		require.NoError(t, d.Init(context.Background(), testCoordinates()))

		_, err := d.Plan(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot plan in phase backend_configured")
	})
}

func TestDriverApply(t *testing.T) {
	t.Parallel()

	t.Run("applies the recorded plan", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := bindDriver(t, r)
		_, err := d.Plan(context.Background())
		require.NoError(t, err)

		require.NoError(t, d.Apply(context.Background()))
		assert.Equal(t, PhaseApplied, d.Phase())
		assert.Equal(t, "terraform apply -input=false -auto-approve tfplan", r.CommandLines()[3])
	})

	t.Run("refused without a plan", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := bindDriver(t, r)

		err := d.Apply(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot apply in phase workspace_selected")
	})
}

func TestDriverDestroy(t *testing.T) {
	t.Parallel()

	t.Run("refused before purge", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		d := bindDriver(t, r)

		err := d.Destroy(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket outputs must be purged first")
		assert.Equal(t, PhaseFailed, d.Phase())
		for _, line := range r.CommandLines() {
			assert.NotContains(t, line, "destroy")
		}
	})

	t.Run("runs after outputs and purge", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.OutputFor("terraform output -json", "{}")
		d := bindDriver(t, r)
		_, err := d.Outputs(context.Background())
		require.NoError(t, err)
		require.NoError(t, d.MarkPurged())

		require.NoError(t, d.Destroy(context.Background()))
		assert.Equal(t, PhaseDestroyed, d.Phase())

		lines := r.CommandLines()
		assert.Equal(t, "terraform destroy -input=false -auto-approve", lines[len(lines)-1])
	})

	t.Run("passes var files through", func(t *testing.T) {
		t.Parallel()
		r := mocks.NewMockRunner()
		r.OutputFor("terraform output -json", "{}")
		d := bindDriver(t, r)
		_, err := d.Outputs(context.Background())
		require.NoError(t, err)
		require.NoError(t, d.MarkPurged())

		require.NoError(t, d.Destroy(context.Background(), "prod.tfvars"))
		lines := r.CommandLines()
		assert.Equal(t, "terraform destroy -input=false -auto-approve -var-file=prod.tfvars", lines[len(lines)-1])
	})
}

func TestDriverMarkPurged(t *testing.T) {
	t.Parallel()

	r := mocks.NewMockRunner()
	d := bindDriver(t, r)

	err := d.MarkPurged()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot mark purged in phase workspace_selected")
	assert.Equal(t, PhaseFailed, d.Phase())
}

func TestDriverBinaryOverride(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv("TWIN_TERRAFORM_BIN", "tofu")

	r := mocks.NewMockRunner()
	d := NewDriver(r, "/work/terraform")
	require.NoError(t, d.Init(context.Background(), testCoordinates()))

	assert.Contains(t, r.CommandLines()[0], "tofu init")
}

// Package terraform drives the provisioning backend as an opaque subprocess:
// backend initialization, workspace isolation, plan/apply, destroy, and
// best-effort output queries.
package terraform

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/internal/runner"
	"github.com/twincloud/twinctl/pkg/logging"
)

// Phase tracks the driver through its lifecycle. Any transition failure
// moves to the terminal PhaseFailed; there is no automatic rollback. The
// provisioning backend's own consistency mechanism owns recovery.
type Phase string

// Driver lifecycle phases.
const (
	PhaseUninitialized     Phase = "uninitialized"
	PhaseBackendConfigured Phase = "backend_configured"
	PhaseWorkspaceSelected Phase = "workspace_selected"
	PhasePlanned           Phase = "planned"
	PhaseApplied           Phase = "applied"
	PhaseOutputsRead       Phase = "outputs_read"
	PhasePurged            Phase = "purged"
	PhaseDestroyed         Phase = "destroyed"
	PhaseFailed            Phase = "failed"
)

// planFileName is the plan artifact passed from plan to apply.
const planFileName = "tfplan"

// planChangesExitCode is the -detailed-exitcode status terraform returns
// when the plan contains changes.
const planChangesExitCode = 2

// Driver runs the terraform binary against a single working directory.
// Calls are strictly sequential; the driver blocks until each subprocess
// exits. Lock contention in the state backend surfaces as a fatal init or
// plan failure and is never retried here.
type Driver struct {
	runner  interfaces.CommandRunner
	workDir string
	binary  string
	phase   Phase
	logger  *logging.Logger
}

// NewDriver creates a driver for the provisioning definitions in workDir.
// The terraform binary can be overridden with TWIN_TERRAFORM_BIN.
func NewDriver(cmdRunner interfaces.CommandRunner, workDir string) *Driver {
	binary := os.Getenv("TWIN_TERRAFORM_BIN")
	if binary == "" {
		binary = "terraform"
	}
	return &Driver{
		runner:  cmdRunner,
		workDir: workDir,
		binary:  binary,
		phase:   PhaseUninitialized,
		logger:  logging.NewLogger("terraform-driver"),
	}
}

// Phase returns the driver's current lifecycle phase.
func (d *Driver) Phase() Phase {
	return d.phase
}

// fail moves the driver to the terminal failed phase and returns err.
func (d *Driver) fail(err error) error {
	d.phase = PhaseFailed
	return err
}

// Init binds the backend against the given state coordinates. Reinitializing
// against a different state location is allowed and expected when switching
// environments, hence -reconfigure.
func (d *Driver) Init(ctx context.Context, coords interfaces.BackendCoordinates) error {
	args := []string{
		"init",
		"-input=false",
		"-reconfigure",
		"-backend-config=bucket=" + coords.Bucket,
		"-backend-config=key=" + coords.Key,
		"-backend-config=region=" + coords.Region,
		"-backend-config=dynamodb_table=" + coords.LockTable,
		"-backend-config=encrypt=" + strconv.FormatBool(coords.Encrypt),
	}
	if err := d.runner.Run(ctx, d.workDir, nil, d.binary, args...); err != nil {
		return d.fail(fmt.Errorf("terraform init failed: %w", err))
	}
	d.phase = PhaseBackendConfigured
	return nil
}

// EnsureWorkspace selects the named workspace, creating it first when
// selection fails because it does not exist. `workspace new` switches to
// the new workspace on success, so repeated invocation with an existing
// workspace never attempts creation.
func (d *Driver) EnsureWorkspace(ctx context.Context, name string) error {
	if d.phase != PhaseBackendConfigured {
		return d.fail(fmt.Errorf("cannot select workspace in phase %s", d.phase))
	}

	if err := d.runner.Run(ctx, d.workDir, nil, d.binary, "workspace", "select", name); err != nil {
		d.logger.Info("Workspace %s does not exist, creating it", name)
		if err := d.runner.Run(ctx, d.workDir, nil, d.binary, "workspace", "new", name); err != nil {
			return d.fail(fmt.Errorf("failed to create workspace %s: %w", name, err))
		}
	}
	d.phase = PhaseWorkspaceSelected
	return nil
}

// Plan computes a change plan and records it for Apply. The detailed exit
// code distinguishes an empty plan (no drift, changes=false) from one that
// would modify infrastructure.
func (d *Driver) Plan(ctx context.Context) (bool, error) {
	if d.phase != PhaseWorkspaceSelected {
		return false, d.fail(fmt.Errorf("cannot plan in phase %s", d.phase))
	}

	err := d.runner.Run(ctx, d.workDir, nil, d.binary,
		"plan", "-input=false", "-detailed-exitcode", "-out="+planFileName)
	if err != nil {
		if runner.ExitCode(err) == planChangesExitCode {
			d.phase = PhasePlanned
			return true, nil
		}
		return false, d.fail(fmt.Errorf("terraform plan failed: %w", err))
	}
	d.phase = PhasePlanned
	return false, nil
}

// Apply applies the plan produced by Plan.
func (d *Driver) Apply(ctx context.Context) error {
	if d.phase != PhasePlanned {
		return d.fail(fmt.Errorf("cannot apply in phase %s", d.phase))
	}

	if err := d.runner.Run(ctx, d.workDir, nil, d.binary,
		"apply", "-input=false", "-auto-approve", planFileName); err != nil {
		return d.fail(fmt.Errorf("terraform apply failed: %w", err))
	}
	d.phase = PhaseApplied
	return nil
}

// MarkPurged records that every resolved bucket output has been emptied.
// Destroy refuses to run before this on the teardown path.
func (d *Driver) MarkPurged() error {
	if d.phase != PhaseOutputsRead {
		return d.fail(fmt.Errorf("cannot mark purged in phase %s", d.phase))
	}
	d.phase = PhasePurged
	return nil
}

// Destroy tears down all managed infrastructure with auto-approval. Any
// given var files are passed through, e.g. a prod-only override.
func (d *Driver) Destroy(ctx context.Context, varFiles ...string) error {
	if d.phase != PhasePurged {
		return d.fail(fmt.Errorf("cannot destroy in phase %s: bucket outputs must be purged first", d.phase))
	}

	args := []string{"destroy", "-input=false", "-auto-approve"}
	for _, vf := range varFiles {
		args = append(args, "-var-file="+vf)
	}
	if err := d.runner.Run(ctx, d.workDir, nil, d.binary, args...); err != nil {
		return d.fail(fmt.Errorf("terraform destroy failed: %w", err))
	}
	d.phase = PhaseDestroyed
	return nil
}

// Ensure Driver implements the Provisioner interface
var _ interfaces.Provisioner = (*Driver)(nil)

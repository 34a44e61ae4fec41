package deployment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/twincloud/twinctl/internal/config"
	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// Teardown stage names in execution order.
const (
	StagePreflight   = "preflight"
	StageOutputs     = "read-outputs"
	StagePurge       = "purge-buckets"
	StagePlaceholder = "placeholder-archive"
	StageDestroy     = "destroy"
)

// prodVarFileName is the optional variable-file override applied when
// destroying the prod environment.
const prodVarFileName = "prod.tfvars"

// Teardown is the destroy-path orchestrator: verify the state backend,
// bind to it, read pre-destroy outputs, empty every resolved bucket, make
// sure the archive the definitions reference exists, then destroy. Bucket
// purging is a required ordering step: the provisioning backend cannot
// delete non-empty buckets.
type Teardown struct {
	runCtx      *interfaces.RunContext
	checker     interfaces.BackendChecker
	provisioner interfaces.Provisioner
	builder     interfaces.ArtifactBuilder
	store       interfaces.ObjectStore
	logger      *logging.Logger
}

// TeardownConfig holds all dependencies needed by the teardown pipeline.
type TeardownConfig struct {
	RunContext  *interfaces.RunContext
	Checker     interfaces.BackendChecker
	Provisioner interfaces.Provisioner
	Builder     interfaces.ArtifactBuilder
	Store       interfaces.ObjectStore
}

// NewTeardown creates a teardown pipeline with full configuration.
func NewTeardown(cfg TeardownConfig) (*Teardown, error) {
	if cfg.RunContext == nil {
		return nil, errors.New("run context is required")
	}
	if cfg.Checker == nil {
		return nil, errors.New("backend checker is required")
	}
	if cfg.Provisioner == nil {
		return nil, errors.New("provisioner is required")
	}
	if cfg.Builder == nil {
		return nil, errors.New("artifact builder is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("object store is required")
	}
	return &Teardown{
		runCtx:      cfg.RunContext,
		checker:     cfg.Checker,
		provisioner: cfg.Provisioner,
		builder:     cfg.Builder,
		store:       cfg.Store,
		logger:      logging.NewLogger("teardown-pipeline"),
	}, nil
}

// Destroy runs the full teardown path.
func (t *Teardown) Destroy(ctx context.Context) (*interfaces.RunSummary, error) {
	summary := &interfaces.RunSummary{Environment: t.runCtx.Environment}
	coords := config.DestroyBackendCoordinates(t.runCtx)

	result := t.preflightStage(ctx, coords)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodePreflight, StagePreflight, result.Err)
	}

	result = t.bindStage(ctx, coords)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeProvisioning, StageProvision, result.Err)
	}

	outputs, result := t.outputsStage(ctx)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeProvisioning, StageOutputs, result.Err)
	}
	summary.Outputs = outputs

	result = t.purgeStage(ctx, outputs)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeProvisioning, StagePurge, result.Err)
	}

	result = t.placeholderStage()
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeBuild, StagePlaceholder, result.Err)
	}

	result = t.destroyStage(ctx)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeProvisioning, StageDestroy, result.Err)
	}

	return summary, nil
}

// preflightStage refuses to destroy against an unresolvable state backend.
func (t *Teardown) preflightStage(ctx context.Context, coords interfaces.BackendCoordinates) interfaces.StageResult {
	t.logger.StageStart(StagePreflight)
	start := time.Now()

	if err := t.checker.CheckStateBackend(ctx, coords); err != nil {
		t.logger.StageFailed(StagePreflight, err)
		return failedResult(StagePreflight, err, start)
	}

	t.logger.StageSuccess(StagePreflight)
	return successResult(StagePreflight, nil, start)
}

// bindStage initializes the backend and selects the workspace.
func (t *Teardown) bindStage(ctx context.Context, coords interfaces.BackendCoordinates) interfaces.StageResult {
	t.logger.StageStart(StageProvision)
	start := time.Now()

	if err := t.provisioner.Init(ctx, coords); err != nil {
		t.logger.StageFailed(StageProvision, err)
		return failedResult(StageProvision, err, start)
	}
	if err := t.provisioner.EnsureWorkspace(ctx, t.runCtx.Environment.String()); err != nil {
		t.logger.StageFailed(StageProvision, err)
		return failedResult(StageProvision, err, start)
	}

	t.logger.StageSuccess(StageProvision)
	return successResult(StageProvision, nil, start)
}

// outputsStage reads pre-destroy outputs best-effort: absent outputs mean
// the corresponding resources were never provisioned here.
func (t *Teardown) outputsStage(ctx context.Context) (interfaces.OutputSet, interfaces.StageResult) {
	t.logger.StageStart(StageOutputs)
	start := time.Now()

	outputs, err := t.provisioner.Outputs(ctx)
	if err != nil {
		t.logger.StageFailed(StageOutputs, err)
		return outputs, failedResult(StageOutputs, err, start)
	}

	t.logger.StageSuccess(StageOutputs)
	return outputs, successResult(StageOutputs, outputs.AsMap(), start)
}

// purgeStage empties every resolved bucket output, then records the purge
// with the provisioner so destroy may proceed.
func (t *Teardown) purgeStage(ctx context.Context, outputs interfaces.OutputSet) interfaces.StageResult {
	t.logger.StageStart(StagePurge)
	start := time.Now()

	for _, bucket := range outputs.BucketOutputs() {
		if err := t.store.PurgeBucket(ctx, bucket); err != nil {
			t.logger.StageFailed(StagePurge, err)
			return failedResult(StagePurge, err, start)
		}
	}
	if err := t.provisioner.MarkPurged(); err != nil {
		t.logger.StageFailed(StagePurge, err)
		return failedResult(StagePurge, err, start)
	}

	t.logger.StageSuccess(StagePurge)
	return successResult(StagePurge, nil, start)
}

// placeholderStage guarantees the archive the definitions reference exists
// even though this run never built one.
func (t *Teardown) placeholderStage() interfaces.StageResult {
	t.logger.StageStart(StagePlaceholder)
	start := time.Now()

	if _, err := t.builder.EnsurePlaceholder(); err != nil {
		t.logger.StageFailed(StagePlaceholder, err)
		return failedResult(StagePlaceholder, err, start)
	}

	t.logger.StageSuccess(StagePlaceholder)
	return successResult(StagePlaceholder, nil, start)
}

// destroyStage invokes destroy with auto-approval, applying the prod
// variable-file override when present.
func (t *Teardown) destroyStage(ctx context.Context) interfaces.StageResult {
	t.logger.StageStart(StageDestroy)
	start := time.Now()

	var varFiles []string
	if t.runCtx.Environment == interfaces.EnvironmentProd {
		if _, err := os.Stat(filepath.Join(t.runCtx.TerraformDir, prodVarFileName)); err == nil {
			varFiles = append(varFiles, prodVarFileName)
		}
	}

	if err := t.provisioner.Destroy(ctx, varFiles...); err != nil {
		t.logger.StageFailed(StageDestroy, err)
		return failedResult(StageDestroy, err, start)
	}

	t.logger.StageSuccess(StageDestroy)
	return successResult(StageDestroy, nil, start)
}

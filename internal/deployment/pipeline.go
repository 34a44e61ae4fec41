package deployment

import (
	"context"
	"errors"
	"time"

	"github.com/twincloud/twinctl/internal/config"
	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// Stage names in execution order.
const (
	StageBuild         = "build"
	StageBackendConfig = "backend-config"
	StageProvision     = "provision"
	StagePublish       = "publish"
)

// Pipeline is the deploy-path orchestrator. Stages run in fixed order,
// strictly sequentially; the first fatal failure aborts the run. On full
// success the summary aggregates every output the backend reported,
// omitting absent ones.
type Pipeline struct {
	runCtx      *interfaces.RunContext
	builder     interfaces.ArtifactBuilder
	provisioner interfaces.Provisioner
	publisher   interfaces.FrontendPublisher
	logger      *logging.Logger
}

// PipelineConfig holds all dependencies needed by the deploy pipeline.
type PipelineConfig struct {
	RunContext  *interfaces.RunContext
	Builder     interfaces.ArtifactBuilder
	Provisioner interfaces.Provisioner
	Publisher   interfaces.FrontendPublisher
}

// NewPipeline creates a deploy pipeline with full configuration.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.RunContext == nil {
		return nil, errors.New("run context is required")
	}
	if cfg.Builder == nil {
		return nil, errors.New("artifact builder is required")
	}
	if cfg.Provisioner == nil {
		return nil, errors.New("provisioner is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New("publisher is required")
	}
	return &Pipeline{
		runCtx:      cfg.RunContext,
		builder:     cfg.Builder,
		provisioner: cfg.Provisioner,
		publisher:   cfg.Publisher,
		logger:      logging.NewLogger("deploy-pipeline"),
	}, nil
}

// Deploy runs the full deploy path: build the archive, bind the state
// backend, resolve the workspace, plan and apply, then publish the frontend
// when the backend provisioned a frontend bucket.
func (p *Pipeline) Deploy(ctx context.Context) (*interfaces.RunSummary, error) {
	summary := &interfaces.RunSummary{Environment: p.runCtx.Environment}

	archive, result := p.buildStage(ctx)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeBuild, StageBuild, result.Err)
	}
	summary.ArchiveBytes = archive.SizeBytes

	coords, result := p.backendConfigStage()
	summary.Stages = append(summary.Stages, result)

	outputs, result := p.provisionStage(ctx, coords)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodeProvisioning, StageProvision, result.Err)
	}
	summary.Outputs = outputs

	result = p.publishStage(ctx, outputs, summary)
	summary.Stages = append(summary.Stages, result)
	if result.Failed() {
		return summary, stageError(CodePublish, StagePublish, result.Err)
	}

	return summary, nil
}

// buildStage packages the backend archive.
func (p *Pipeline) buildStage(ctx context.Context) (interfaces.ArchiveInfo, interfaces.StageResult) {
	p.logger.StageStart(StageBuild)
	start := time.Now()

	archive, err := p.builder.Build(ctx)
	if err != nil {
		p.logger.StageFailed(StageBuild, err)
		return archive, failedResult(StageBuild, err, start)
	}

	p.logger.StageSuccess(StageBuild)
	return archive, successResult(StageBuild, nil, start)
}

// backendConfigStage derives the remote state coordinates. Derivation is
// pure and cannot fail.
func (p *Pipeline) backendConfigStage() (interfaces.BackendCoordinates, interfaces.StageResult) {
	p.logger.StageStart(StageBackendConfig)
	start := time.Now()

	coords := config.DeriveBackendCoordinates(p.runCtx)

	p.logger.StageSuccess(StageBackendConfig)
	return coords, successResult(StageBackendConfig, map[string]string{
		"state_bucket": coords.Bucket,
		"state_key":    coords.Key,
		"lock_table":   coords.LockTable,
	}, start)
}

// provisionStage initializes the backend, resolves the workspace, plans,
// applies, and reads outputs.
func (p *Pipeline) provisionStage(ctx context.Context, coords interfaces.BackendCoordinates) (interfaces.OutputSet, interfaces.StageResult) {
	p.logger.StageStart(StageProvision)
	start := time.Now()

	var outputs interfaces.OutputSet

	if err := p.provisioner.Init(ctx, coords); err != nil {
		p.logger.StageFailed(StageProvision, err)
		return outputs, failedResult(StageProvision, err, start)
	}
	if err := p.provisioner.EnsureWorkspace(ctx, p.runCtx.Environment.String()); err != nil {
		p.logger.StageFailed(StageProvision, err)
		return outputs, failedResult(StageProvision, err, start)
	}

	changes, err := p.provisioner.Plan(ctx)
	if err != nil {
		p.logger.StageFailed(StageProvision, err)
		return outputs, failedResult(StageProvision, err, start)
	}
	if !changes {
		p.logger.Info("Plan reports no changes for %s", p.runCtx.Environment)
	}

	if err := p.provisioner.Apply(ctx); err != nil {
		p.logger.StageFailed(StageProvision, err)
		return outputs, failedResult(StageProvision, err, start)
	}

	outputs, err = p.provisioner.Outputs(ctx)
	if err != nil {
		p.logger.StageFailed(StageProvision, err)
		return outputs, failedResult(StageProvision, err, start)
	}

	p.logger.StageSuccess(StageProvision)
	return outputs, successResult(StageProvision, outputs.AsMap(), start)
}

// publishStage publishes the frontend, or skips when the frontend bucket
// was not provisioned in this environment. Publisher warnings propagate to
// the summary without failing the run.
func (p *Pipeline) publishStage(ctx context.Context, outputs interfaces.OutputSet, summary *interfaces.RunSummary) interfaces.StageResult {
	start := time.Now()

	if !outputs.HasFrontendBucket() {
		p.logger.StageSkipped(StagePublish, "frontend bucket not provisioned")
		return skippedResult(StagePublish, start)
	}

	p.logger.StageStart(StagePublish)
	result, err := p.publisher.Publish(ctx, outputs)
	if err != nil {
		p.logger.StageFailed(StagePublish, err)
		return failedResult(StagePublish, err, start)
	}
	summary.Warnings = append(summary.Warnings, result.Warnings...)

	p.logger.StageSuccess(StagePublish)
	return successResult(StagePublish, map[string]string{"bucket": result.Bucket}, start)
}

func successResult(stage string, outputs map[string]string, start time.Time) interfaces.StageResult {
	return interfaces.StageResult{
		Stage:    stage,
		Status:   interfaces.StageStatusSuccess,
		Outputs:  outputs,
		Duration: time.Since(start),
	}
}

func failedResult(stage string, err error, start time.Time) interfaces.StageResult {
	return interfaces.StageResult{
		Stage:    stage,
		Status:   interfaces.StageStatusFailed,
		Err:      err,
		Duration: time.Since(start),
	}
}

func skippedResult(stage string, start time.Time) interfaces.StageResult {
	return interfaces.StageResult{
		Stage:    stage,
		Status:   interfaces.StageStatusSkipped,
		Duration: time.Since(start),
	}
}

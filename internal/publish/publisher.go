// Package publish builds the frontend bundle and pushes it to the
// provisioned website bucket, invalidating any fronting distribution.
package publish

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// distDirName is the build output directory the frontend toolchain
// produces under the frontend source directory.
const distDirName = "dist"

// Build-time configuration injected into the frontend bundle.
const (
	envAPIURL      = "VITE_API_URL"
	envEnvironment = "VITE_ENVIRONMENT"
)

// Publisher builds and publishes the static frontend. Dependency install,
// build, and bucket sync failures are fatal; CDN resolution and
// invalidation failures are reported as warnings and the publish still
// succeeds.
type Publisher struct {
	runner      interfaces.CommandRunner
	store       interfaces.ObjectStore
	cdn         interfaces.CDN
	frontendDir string
	environment interfaces.Environment
	logger      *logging.Logger
}

// PublisherConfig holds the dependencies needed by the publisher.
type PublisherConfig struct {
	Runner      interfaces.CommandRunner
	Store       interfaces.ObjectStore
	CDN         interfaces.CDN
	FrontendDir string
	Environment interfaces.Environment
}

// NewPublisher creates a publisher from its configuration.
func NewPublisher(cfg PublisherConfig) *Publisher {
	return &Publisher{
		runner:      cfg.Runner,
		store:       cfg.Store,
		cdn:         cfg.CDN,
		frontendDir: cfg.FrontendDir,
		environment: cfg.Environment,
		logger:      logging.NewLogger("publisher"),
	}
}

// Publish installs dependencies reproducibly, builds the bundle with the
// API URL and environment injected, mirrors the build output to the
// frontend bucket, and best-effort invalidates a matching distribution.
func (p *Publisher) Publish(ctx context.Context, outputs interfaces.OutputSet) (*interfaces.PublishResult, error) {
	if !outputs.HasFrontendBucket() {
		return nil, fmt.Errorf("frontend bucket output is not provisioned")
	}
	bucket := outputs.FrontendBucket

	if err := p.runner.Run(ctx, p.frontendDir, nil, "npm", "ci"); err != nil {
		return nil, fmt.Errorf("frontend dependency install failed: %w", err)
	}

	buildEnv := []string{
		envAPIURL + "=" + outputs.APIURL,
		envEnvironment + "=" + p.environment.String(),
	}
	if err := p.runner.Run(ctx, p.frontendDir, buildEnv, "npm", "run", "build"); err != nil {
		return nil, fmt.Errorf("frontend build failed: %w", err)
	}

	stats, err := p.store.MirrorDir(ctx, filepath.Join(p.frontendDir, distDirName), bucket)
	if err != nil {
		return nil, fmt.Errorf("frontend bucket sync failed: %w", err)
	}

	result := &interfaces.PublishResult{
		Bucket: bucket,
		Stats:  *stats,
	}
	p.invalidateCDN(ctx, outputs, result)
	return result, nil
}

// invalidateCDN resolves the distribution by matching its origin against
// the bucket's website endpoint and invalidates its full path set. Every
// failure path here is a warning: the publish already succeeded.
func (p *Publisher) invalidateCDN(ctx context.Context, outputs interfaces.OutputSet, result *interfaces.PublishResult) {
	if !outputs.HasCDN() {
		return
	}

	origin := p.store.WebsiteEndpoint(outputs.FrontendBucket)
	distID, err := p.cdn.FindDistributionByOrigin(ctx, origin)
	if err != nil {
		p.warn(result, fmt.Sprintf("failed to resolve CDN distribution for origin %s: %v", origin, err))
		return
	}
	if distID == "" {
		p.warn(result, fmt.Sprintf("no CDN distribution matches origin %s, skipping invalidation", origin))
		return
	}

	if err := p.cdn.Invalidate(ctx, distID); err != nil {
		p.warn(result, fmt.Sprintf("cache invalidation failed for distribution %s: %v", distID, err))
	}
}

func (p *Publisher) warn(result *interfaces.PublishResult, msg string) {
	p.logger.Warn("%s", msg)
	result.Warnings = append(result.Warnings, msg)
}

// Ensure Publisher implements the FrontendPublisher interface
var _ interfaces.FrontendPublisher = (*Publisher)(nil)

package interfaces

import "context"

// CommandRunner executes external commands. Every pipeline stage that shells
// out (terraform, dependency installers, the frontend build) goes through
// this interface so tests can observe call ordering.
type CommandRunner interface {
	// Run executes the command in dir with extra environment entries
	// appended to the parent environment, streaming output to the
	// operator. A non-zero exit status is returned as an error.
	Run(ctx context.Context, dir string, env []string, name string, args ...string) error

	// RunOutput executes the command and captures its stdout. Stderr still
	// streams to the operator.
	RunOutput(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)
}

// Provisioner drives the provisioning backend through its lifecycle.
// Implementations own the phase machine; callers sequence the methods.
type Provisioner interface {
	// Init binds the backend to the given state coordinates. Rebinding
	// across environments is allowed and expected.
	Init(ctx context.Context, coords BackendCoordinates) error

	// EnsureWorkspace selects the named workspace, creating it first if it
	// does not exist. Idempotent for existing workspaces.
	EnsureWorkspace(ctx context.Context, name string) error

	// Plan computes a change plan. changes reports whether applying the
	// plan would modify infrastructure.
	Plan(ctx context.Context) (changes bool, err error)

	// Apply applies the most recent plan.
	Apply(ctx context.Context) error

	// Outputs reads the named outputs best-effort: a missing key yields an
	// empty value, never an error.
	Outputs(ctx context.Context) (OutputSet, error)

	// MarkPurged records that every resolved bucket output has been
	// emptied. Destroy refuses to run before this.
	MarkPurged() error

	// Destroy tears down all managed infrastructure with auto-approval.
	Destroy(ctx context.Context, varFiles ...string) error
}

// ArtifactBuilder packages the backend function into a deployable archive.
type ArtifactBuilder interface {
	// Build produces a fresh archive at the builder's fixed path,
	// discarding any previous archive.
	Build(ctx context.Context) (ArchiveInfo, error)

	// EnsurePlaceholder guarantees a minimal archive exists at the fixed
	// path, creating an empty one if none was built. The provisioning
	// definitions reference this file even during destroy.
	EnsurePlaceholder() (ArchiveInfo, error)
}

// ObjectStore provides the bucket operations the pipeline needs: recursive
// purge before destroy and mirror sync for publishing.
type ObjectStore interface {
	// PurgeBucket recursively deletes every object in the bucket.
	PurgeBucket(ctx context.Context, bucket string) error

	// MirrorDir makes the bucket's contents exactly match localDir,
	// uploading everything and deleting stale remote objects.
	MirrorDir(ctx context.Context, localDir, bucket string) (*MirrorStats, error)

	// WebsiteEndpoint returns the S3 website endpoint domain for a bucket
	// in the store's region, used to match CDN origins.
	WebsiteEndpoint(bucket string) string
}

// MirrorStats reports what a mirror sync did.
type MirrorStats struct {
	Uploaded int
	Deleted  int
}

// CDN resolves and invalidates the cache distribution fronting the frontend
// bucket. All operations are best-effort from the pipeline's point of view.
type CDN interface {
	// FindDistributionByOrigin returns the ID of the distribution whose
	// origin matches the given domain, or "" when none matches.
	FindDistributionByOrigin(ctx context.Context, originDomain string) (string, error)

	// Invalidate issues a full-path cache invalidation.
	Invalidate(ctx context.Context, distributionID string) error
}

// BackendChecker verifies the remote state store exists before a destroy
// run touches it.
type BackendChecker interface {
	CheckStateBackend(ctx context.Context, coords BackendCoordinates) error
}

// FrontendPublisher builds and publishes the frontend bundle.
type FrontendPublisher interface {
	// Publish installs dependencies, builds the bundle with the API URL
	// and environment injected, mirrors it to the frontend bucket, and
	// best-effort invalidates any fronting distribution.
	Publish(ctx context.Context, outputs OutputSet) (*PublishResult, error)
}

// PublishResult reports what a publish did, including non-fatal warnings.
type PublishResult struct {
	Bucket   string
	Stats    MirrorStats
	Warnings []string
}

package mocks

import (
	"context"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// MockProvisioner is a configurable Provisioner double. When Tracker is
// shared with other mocks, the combined call sequence becomes observable
// for ordering assertions.
type MockProvisioner struct {
	Tracker *CallTracker[CallWithBucket]

	InitErr      error
	WorkspaceErr error
	PlanErr      error
	PlanChanges  bool
	ApplyErr     error
	OutputsErr   error
	OutputSet    interfaces.OutputSet
	PurgedErr    error
	DestroyErr   error

	// DestroyVarFiles records the var files the last Destroy received.
	DestroyVarFiles []string
}

// NewMockProvisioner creates a provisioner mock with its own tracker.
func NewMockProvisioner() *MockProvisioner {
	return &MockProvisioner{Tracker: NewCallTracker[CallWithBucket]()}
}

// Init implements the Provisioner interface
func (m *MockProvisioner) Init(_ context.Context, _ interfaces.BackendCoordinates) error {
	m.Tracker.RecordCall(NewCallWithBucket("Init", "", m.InitErr))
	return m.InitErr
}

// EnsureWorkspace implements the Provisioner interface
func (m *MockProvisioner) EnsureWorkspace(_ context.Context, name string) error {
	m.Tracker.RecordCall(NewCallWithBucket("EnsureWorkspace", name, m.WorkspaceErr))
	return m.WorkspaceErr
}

// Plan implements the Provisioner interface
func (m *MockProvisioner) Plan(_ context.Context) (bool, error) {
	m.Tracker.RecordCall(NewCallWithBucket("Plan", "", m.PlanErr))
	return m.PlanChanges, m.PlanErr
}

// Apply implements the Provisioner interface
func (m *MockProvisioner) Apply(_ context.Context) error {
	m.Tracker.RecordCall(NewCallWithBucket("Apply", "", m.ApplyErr))
	return m.ApplyErr
}

// Outputs implements the Provisioner interface
func (m *MockProvisioner) Outputs(_ context.Context) (interfaces.OutputSet, error) {
	m.Tracker.RecordCall(NewCallWithBucket("Outputs", "", m.OutputsErr))
	return m.OutputSet, m.OutputsErr
}

// MarkPurged implements the Provisioner interface
func (m *MockProvisioner) MarkPurged() error {
	m.Tracker.RecordCall(NewCallWithBucket("MarkPurged", "", m.PurgedErr))
	return m.PurgedErr
}

// Destroy implements the Provisioner interface
func (m *MockProvisioner) Destroy(_ context.Context, varFiles ...string) error {
	m.DestroyVarFiles = varFiles
	m.Tracker.RecordCall(NewCallWithBucket("Destroy", "", m.DestroyErr))
	return m.DestroyErr
}

// MockObjectStore is a configurable ObjectStore double.
type MockObjectStore struct {
	Tracker *CallTracker[CallWithBucket]

	PurgeErrs map[string]error
	MirrorErr error
	Stats     interfaces.MirrorStats
	Region    string
}

// NewMockObjectStore creates an object store mock with its own tracker.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Tracker: NewCallTracker[CallWithBucket](),
		Region:  "us-east-1",
	}
}

// PurgeBucket implements the ObjectStore interface
func (m *MockObjectStore) PurgeBucket(_ context.Context, bucket string) error {
	err := m.PurgeErrs[bucket]
	m.Tracker.RecordCall(NewCallWithBucket("PurgeBucket", bucket, err))
	return err
}

// MirrorDir implements the ObjectStore interface
func (m *MockObjectStore) MirrorDir(_ context.Context, _, bucket string) (*interfaces.MirrorStats, error) {
	m.Tracker.RecordCall(NewCallWithBucket("MirrorDir", bucket, m.MirrorErr))
	if m.MirrorErr != nil {
		return nil, m.MirrorErr
	}
	stats := m.Stats
	return &stats, nil
}

// WebsiteEndpoint implements the ObjectStore interface
func (m *MockObjectStore) WebsiteEndpoint(bucket string) string {
	return bucket + ".s3-website-" + m.Region + ".amazonaws.com"
}

// MockCDN is a configurable CDN double.
type MockCDN struct {
	Tracker *CallTracker[CallWithBucket]

	DistributionID string
	FindErr        error
	InvalidateErr  error
}

// NewMockCDN creates a CDN mock with its own tracker.
func NewMockCDN() *MockCDN {
	return &MockCDN{Tracker: NewCallTracker[CallWithBucket]()}
}

// FindDistributionByOrigin implements the CDN interface
func (m *MockCDN) FindDistributionByOrigin(_ context.Context, originDomain string) (string, error) {
	m.Tracker.RecordCall(NewCallWithBucket("FindDistributionByOrigin", originDomain, m.FindErr))
	return m.DistributionID, m.FindErr
}

// Invalidate implements the CDN interface
func (m *MockCDN) Invalidate(_ context.Context, distributionID string) error {
	m.Tracker.RecordCall(NewCallWithBucket("Invalidate", distributionID, m.InvalidateErr))
	return m.InvalidateErr
}

// MockBuilder is a configurable ArtifactBuilder double.
type MockBuilder struct {
	Tracker *CallTracker[CallWithBucket]

	BuildInfo       interfaces.ArchiveInfo
	BuildErr        error
	PlaceholderInfo interfaces.ArchiveInfo
	PlaceholderErr  error
}

// NewMockBuilder creates a builder mock with its own tracker.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{Tracker: NewCallTracker[CallWithBucket]()}
}

// Build implements the ArtifactBuilder interface
func (m *MockBuilder) Build(_ context.Context) (interfaces.ArchiveInfo, error) {
	m.Tracker.RecordCall(NewCallWithBucket("Build", "", m.BuildErr))
	return m.BuildInfo, m.BuildErr
}

// EnsurePlaceholder implements the ArtifactBuilder interface
func (m *MockBuilder) EnsurePlaceholder() (interfaces.ArchiveInfo, error) {
	m.Tracker.RecordCall(NewCallWithBucket("EnsurePlaceholder", "", m.PlaceholderErr))
	return m.PlaceholderInfo, m.PlaceholderErr
}

// MockChecker is a configurable BackendChecker double.
type MockChecker struct {
	Tracker *CallTracker[CallWithBucket]
	Err     error
}

// NewMockChecker creates a backend checker mock with its own tracker.
func NewMockChecker() *MockChecker {
	return &MockChecker{Tracker: NewCallTracker[CallWithBucket]()}
}

// CheckStateBackend implements the BackendChecker interface
func (m *MockChecker) CheckStateBackend(_ context.Context, coords interfaces.BackendCoordinates) error {
	m.Tracker.RecordCall(NewCallWithBucket("CheckStateBackend", coords.Bucket, m.Err))
	return m.Err
}

// MockPublisher is a configurable FrontendPublisher double.
type MockPublisher struct {
	Tracker *CallTracker[CallWithBucket]

	Result *interfaces.PublishResult
	Err    error
}

// NewMockPublisher creates a publisher mock with its own tracker.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Tracker: NewCallTracker[CallWithBucket]()}
}

// Publish implements the FrontendPublisher interface
func (m *MockPublisher) Publish(_ context.Context, outputs interfaces.OutputSet) (*interfaces.PublishResult, error) {
	m.Tracker.RecordCall(NewCallWithBucket("Publish", outputs.FrontendBucket, m.Err))
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &interfaces.PublishResult{Bucket: outputs.FrontendBucket}, nil
}

// Interface conformance checks
var (
	_ interfaces.Provisioner       = (*MockProvisioner)(nil)
	_ interfaces.ObjectStore       = (*MockObjectStore)(nil)
	_ interfaces.CDN               = (*MockCDN)(nil)
	_ interfaces.ArtifactBuilder   = (*MockBuilder)(nil)
	_ interfaces.BackendChecker    = (*MockChecker)(nil)
	_ interfaces.FrontendPublisher = (*MockPublisher)(nil)
)

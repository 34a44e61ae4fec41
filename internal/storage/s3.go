// Package storage provides the object store operations the pipeline needs:
// recursive bucket purge before destroy, mirror sync for publishing, and
// state backend preflight checks.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// deleteBatchSize is the S3 DeleteObjects limit per request.
const deleteBatchSize = 1000

// S3Store implements the ObjectStore interface using AWS S3.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	logger   *logging.Logger
}

// S3StoreConfig holds the configuration for S3Store.
type S3StoreConfig struct {
	Region   string
	Endpoint string // For LocalStack or custom endpoints
}

// NewS3Store creates an S3-backed object store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for LocalStack
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   cfg.Region,
		logger:   logging.NewLogger("object-store"),
	}, nil
}

// NewS3StoreFromClient wraps an existing client, used by tests.
func NewS3StoreFromClient(client *s3.Client, region string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
		logger:   logging.NewLogger("object-store"),
	}
}

// PurgeBucket recursively deletes every object in the bucket. Storage
// deletion in the provisioning backend fails on non-empty buckets, so this
// must complete before destroy runs.
func (s *S3Store) PurgeBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return fmt.Errorf("bucket name cannot be empty")
	}

	keys, err := s.listKeys(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to list objects in %s: %w", bucket, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.deleteKeys(ctx, bucket, keys); err != nil {
		return fmt.Errorf("failed to purge bucket %s: %w", bucket, err)
	}
	s.logger.Info("Purged %d objects from %s", len(keys), bucket)
	return nil
}

// MirrorDir makes the bucket's contents exactly match localDir: every local
// file is uploaded and remote objects with no local counterpart are
// deleted.
func (s *S3Store) MirrorDir(ctx context.Context, localDir, bucket string) (*interfaces.MirrorStats, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	local, err := listLocalFiles(localDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read local directory %s: %w", localDir, err)
	}

	remote, err := s.listKeys(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects in %s: %w", bucket, err)
	}

	stats := &interfaces.MirrorStats{}
	for key, path := range local {
		if err := s.uploadFile(ctx, bucket, key, path); err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		stats.Uploaded++
	}

	stale := StaleKeys(remote, local)
	if len(stale) > 0 {
		if err := s.deleteKeys(ctx, bucket, stale); err != nil {
			return nil, fmt.Errorf("failed to delete stale objects: %w", err)
		}
		stats.Deleted = len(stale)
	}

	s.logger.Info("Mirrored %s to %s: %d uploaded, %d stale deleted",
		localDir, bucket, stats.Uploaded, stats.Deleted)
	return stats, nil
}

// WebsiteEndpoint returns the S3 website endpoint domain for a bucket in
// the store's region. CDN origins for website buckets use this domain.
func (s *S3Store) WebsiteEndpoint(bucket string) string {
	return fmt.Sprintf("%s.s3-website-%s.amazonaws.com", bucket, s.region)
}

// listKeys returns every object key in the bucket.
func (s *S3Store) listKeys(ctx context.Context, bucket string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// deleteKeys removes the given keys in batches.
func (s *S3Store) deleteKeys(ctx context.Context, bucket string, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}

		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// uploadFile uploads one file with a content type derived from its
// extension so the website serves assets correctly.
func (s *S3Store) uploadFile(ctx context.Context, bucket, key, path string) error {
	f, err := os.Open(path) // #nosec G304 - path comes from a directory walk
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	_, err = s.uploader.Upload(ctx, input)
	return err
}

// listLocalFiles maps object keys (slash-separated, relative to dir) to
// local file paths.
func listLocalFiles(dir string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// StaleKeys returns the remote keys that have no local counterpart. These
// are the objects a mirror sync deletes.
func StaleKeys(remote []string, local map[string]string) []string {
	var stale []string
	for _, key := range remote {
		if _, ok := local[key]; !ok {
			stale = append(stale, key)
		}
	}
	return stale
}

// Ensure S3Store implements the ObjectStore interface
var _ interfaces.ObjectStore = (*S3Store)(nil)

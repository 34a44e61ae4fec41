package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// preflightTimeout bounds the state backend checks; these are cheap
// metadata calls and should fail fast when credentials or coordinates are
// wrong.
const preflightTimeout = 30 * time.Second

// BackendCheck verifies the remote state store before a teardown run
// touches it: the state bucket must be reachable and the lock table must
// exist. Destroying against unresolvable coordinates is never allowed.
type BackendCheck struct {
	s3Client  *s3.Client
	ddbClient *dynamodb.Client
}

// NewBackendCheck creates a checker for the given region. An endpoint
// override routes both clients to LocalStack in tests.
func NewBackendCheck(ctx context.Context, region, endpoint string) (*BackendCheck, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	var ddbClient *dynamodb.Client
	if endpoint != "" {
		s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		ddbClient = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	} else {
		s3Client = s3.NewFromConfig(awsCfg)
		ddbClient = dynamodb.NewFromConfig(awsCfg)
	}

	return &BackendCheck{s3Client: s3Client, ddbClient: ddbClient}, nil
}

// NewBackendCheckFromClients wraps existing clients, used by tests.
func NewBackendCheckFromClients(s3Client *s3.Client, ddbClient *dynamodb.Client) *BackendCheck {
	return &BackendCheck{s3Client: s3Client, ddbClient: ddbClient}
}

// CheckStateBackend verifies the state bucket is reachable and the lock
// table exists.
func (c *BackendCheck) CheckStateBackend(ctx context.Context, coords interfaces.BackendCoordinates) error {
	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(coords.Bucket),
	})
	if err != nil {
		return fmt.Errorf("state bucket %s is not accessible: %w", coords.Bucket, err)
	}

	_, err = c.ddbClient.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(coords.LockTable),
	})
	if err != nil {
		return fmt.Errorf("lock table %s is not accessible: %w", coords.LockTable, err)
	}

	return nil
}

// Ensure BackendCheck implements the BackendChecker interface
var _ interfaces.BackendChecker = (*BackendCheck)(nil)

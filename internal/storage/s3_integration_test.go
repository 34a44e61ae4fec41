//go:build integration
// +build integration

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"

	"github.com/twincloud/twinctl/internal/interfaces"
)

const testRegion = "us-east-1"

// setupLocalStack starts an isolated LocalStack container per test.
func setupLocalStack(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := localstack.Run(ctx,
		"localstack/localstack:3.8.1",
		testcontainers.WithEnv(map[string]string{
			"SERVICES": "s3,dynamodb",
			"DEBUG":    "0",
		}),
	)
	if err != nil {
		t.Fatalf("Failed to start LocalStack container: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Failed to terminate LocalStack container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "4566/tcp")
	if err != nil {
		t.Fatalf("Failed to get LocalStack port: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get LocalStack host: %v", err)
	}
	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

func localStackClients(t *testing.T, endpoint string) (*s3.Client, *dynamodb.Client) {
	t.Helper()
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(testRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		),
	)
	require.NoError(t, err)

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	ddbClient := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return s3Client, ddbClient
}

func createBucket(t *testing.T, client *s3.Client, bucket string) {
	t.Helper()
	_, err := client.CreateBucket(context.Background(), &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	require.NoError(t, err)
}

func listBucketKeys(t *testing.T, client *s3.Client, bucket string) []string {
	t.Helper()
	out, err := client.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	require.NoError(t, err)

	var keys []string
	for _, obj := range out.Contents {
		keys = append(keys, *obj.Key)
	}
	sort.Strings(keys)
	return keys
}

func TestS3StoreMirrorAndPurge(t *testing.T) {
	endpoint := setupLocalStack(t)
	s3Client, _ := localStackClients(t, endpoint)
	store := NewS3StoreFromClient(s3Client, testRegion)

	const bucket = "twin-test-frontend"
	createBucket(t, s3Client, bucket)

	dist := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	stats, err := store.MirrorDir(context.Background(), dist, bucket)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Uploaded)
	assert.Zero(t, stats.Deleted)
	assert.Equal(t, []string{"assets/app.js", "index.html"}, listBucketKeys(t, s3Client, bucket))

	// Content type follows the file extension so the website serves assets.
	head, err := s3Client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String("index.html"),
	})
	require.NoError(t, err)
	assert.Contains(t, aws.ToString(head.ContentType), "text/html")

	// A rebuilt bundle replaces the hashed asset; the old one must go.
	require.NoError(t, os.Remove(filepath.Join(dist, "assets", "app.js")))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app-v2.js"), []byte("console.log(2)"), 0o644))

	stats, err = store.MirrorDir(context.Background(), dist, bucket)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Uploaded)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, []string{"assets/app-v2.js", "index.html"}, listBucketKeys(t, s3Client, bucket))

	require.NoError(t, store.PurgeBucket(context.Background(), bucket))
	assert.Empty(t, listBucketKeys(t, s3Client, bucket))

	// Purging an already empty bucket is a no-op, not an error.
	require.NoError(t, store.PurgeBucket(context.Background(), bucket))
}

func TestBackendCheckAgainstLocalStack(t *testing.T) {
	endpoint := setupLocalStack(t)
	s3Client, ddbClient := localStackClients(t, endpoint)
	checker := NewBackendCheckFromClients(s3Client, ddbClient)

	const stateBucket = "twin-terraform-state-000000000000"
	const lockTable = "twin-terraform-locks"
	createBucket(t, s3Client, stateBucket)

	_, err := ddbClient.CreateTable(context.Background(), &dynamodb.CreateTableInput{
		TableName: aws.String(lockTable),
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("LockID"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("LockID"), KeyType: ddbtypes.KeyTypeHash},
		},
		BillingMode: ddbtypes.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	coords := interfaces.BackendCoordinates{
		Bucket:    stateBucket,
		Key:       "env/test/terraform.tfstate",
		Region:    testRegion,
		LockTable: lockTable,
		Encrypt:   true,
	}
	require.NoError(t, checker.CheckStateBackend(context.Background(), coords))

	coords.Bucket = "missing-bucket"
	err = checker.CheckStateBackend(context.Background(), coords)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accessible")

	coords.Bucket = stateBucket
	coords.LockTable = "missing-table"
	err = checker.CheckStateBackend(context.Background(), coords)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock table")
}

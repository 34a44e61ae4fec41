// Package cdn resolves and invalidates the CloudFront distribution fronting
// the frontend bucket. Everything here is best-effort from the pipeline's
// point of view: a missing distribution or a failed invalidation is a
// warning, never a fatal error.
package cdn

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/hashicorp/go-uuid"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// allPaths invalidates the full distribution cache so a freshly published
// bundle is served immediately.
var allPaths = []string{"/*"}

// CloudFront implements the CDN interface against the CloudFront API.
type CloudFront struct {
	client *cloudfront.Client
	logger *logging.Logger
}

// New creates a CloudFront-backed CDN client.
func New(ctx context.Context, region string) (*CloudFront, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &CloudFront{
		client: cloudfront.NewFromConfig(awsCfg),
		logger: logging.NewLogger("cdn"),
	}, nil
}

// FindDistributionByOrigin returns the ID of the distribution with an
// origin matching the given domain, or "" when none matches. Absence is a
// valid result, not an error.
func (c *CloudFront) FindDistributionByOrigin(ctx context.Context, originDomain string) (string, error) {
	paginator := cloudfront.NewListDistributionsPaginator(c.client, &cloudfront.ListDistributionsInput{})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list distributions: %w", err)
		}
		if page.DistributionList == nil {
			continue
		}
		for _, dist := range page.DistributionList.Items {
			if matchesOrigin(dist, originDomain) {
				return aws.ToString(dist.Id), nil
			}
		}
	}
	return "", nil
}

// Invalidate issues a full-path invalidation with a unique caller
// reference.
func (c *CloudFront) Invalidate(ctx context.Context, distributionID string) error {
	callerRef, err := uuid.GenerateUUID()
	if err != nil {
		return fmt.Errorf("failed to generate caller reference: %w", err)
	}

	_, err = c.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionID),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(fmt.Sprintf("twinctl-%s-%d", callerRef, time.Now().Unix())),
			Paths: &types.Paths{
				Quantity: aws.Int32(int32(len(allPaths))),
				Items:    allPaths,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create invalidation for %s: %w", distributionID, err)
	}

	c.logger.Info("Issued full-path invalidation for distribution %s", distributionID)
	return nil
}

func matchesOrigin(dist types.DistributionSummary, originDomain string) bool {
	if dist.Origins == nil {
		return false
	}
	for _, origin := range dist.Origins.Items {
		if aws.ToString(origin.DomainName) == originDomain {
			return true
		}
	}
	return false
}

// Ensure CloudFront implements the CDN interface
var _ interfaces.CDN = (*CloudFront)(nil)

package cdn

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/stretchr/testify/assert"
)

func TestMatchesOrigin(t *testing.T) {
	t.Parallel()

	const origin = "twin-test-frontend.s3-website-eu-west-1.amazonaws.com"

	tests := []struct {
		name string
		dist types.DistributionSummary
		want bool
	}{
		{
			name: "single matching origin",
			dist: types.DistributionSummary{
				Origins: &types.Origins{
					Items: []types.Origin{{DomainName: aws.String(origin)}},
				},
			},
			want: true,
		},
		{
			name: "match among several origins",
			dist: types.DistributionSummary{
				Origins: &types.Origins{
					Items: []types.Origin{
						{DomainName: aws.String("api.example.com")},
						{DomainName: aws.String(origin)},
					},
				},
			},
			want: true,
		},
		{
			name: "different bucket does not match",
			dist: types.DistributionSummary{
				Origins: &types.Origins{
					Items: []types.Origin{
						{DomainName: aws.String("other-frontend.s3-website-eu-west-1.amazonaws.com")},
					},
				},
			},
			want: false,
		},
		{
			name: "nil origins",
			dist: types.DistributionSummary{},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchesOrigin(tt.dist, origin))
		})
	}
}

package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputSetPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		outputs     OutputSet
		hasFrontend bool
		hasCDN      bool
	}{
		{
			name: "all provisioned",
			outputs: OutputSet{
				FrontendBucket: "twin-test-frontend",
				CDNURL:         "https://d111.cloudfront.net",
			},
			hasFrontend: true,
			hasCDN:      true,
		},
		{
			name:    "nothing provisioned",
			outputs: OutputSet{},
		},
		{
			name: "null placeholders count as absent",
			outputs: OutputSet{
				FrontendBucket: "null",
				CDNURL:         "null",
			},
		},
		{
			name: "frontend without cdn",
			outputs: OutputSet{
				FrontendBucket: "twin-dev-frontend",
			},
			hasFrontend: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.hasFrontend, tt.outputs.HasFrontendBucket())
			assert.Equal(t, tt.hasCDN, tt.outputs.HasCDN())
		})
	}
}

func TestOutputSetBucketOutputs(t *testing.T) {
	t.Parallel()

	outputs := OutputSet{
		FrontendBucket: "twin-prod-frontend",
		DataBucket:     "twin-prod-data",
		APIURL:         "https://api.example.com",
	}
	assert.Equal(t, []string{"twin-prod-frontend", "twin-prod-data"}, outputs.BucketOutputs())

	outputs.FrontendBucket = "null"
	assert.Equal(t, []string{"twin-prod-data"}, outputs.BucketOutputs())

	assert.Empty(t, OutputSet{}.BucketOutputs())
}

func TestOutputSetAsMap(t *testing.T) {
	t.Parallel()

	outputs := OutputSet{
		FrontendBucket: "twin-test-frontend",
		APIURL:         "https://api.test.example/",
		CDNURL:         "null",
	}

	m := outputs.AsMap()
	assert.Equal(t, map[string]string{
		OutputFrontendBucket: "twin-test-frontend",
		OutputAPIURL:         "https://api.test.example/",
	}, m)
	assert.NotContains(t, m, OutputCDNURL)
	assert.NotContains(t, m, OutputDataBucket)
}

package interfaces

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Environment
		wantErr bool
	}{
		{input: "dev", want: EnvironmentDev},
		{input: "test", want: EnvironmentTest},
		{input: "prod", want: EnvironmentProd},
		{input: "staging", wantErr: true},
		{input: "Prod", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("input_"+tt.input, func(t *testing.T) {
			t.Parallel()
			env, err := ParseEnvironment(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid environment")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestRunSummarySucceeded(t *testing.T) {
	t.Parallel()

	summary := &RunSummary{
		Environment: EnvironmentDev,
		Stages: []StageResult{
			{Stage: "build", Status: StageStatusSuccess},
			{Stage: "publish", Status: StageStatusSkipped},
		},
	}
	assert.True(t, summary.Succeeded())

	summary.Stages = append(summary.Stages, StageResult{
		Stage:  "provision",
		Status: StageStatusFailed,
		Err:    errors.New("apply failed"),
	})
	assert.False(t, summary.Succeeded())
}

package terraform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/twincloud/twinctl/internal/interfaces"
)

// rawOutput mirrors one entry of `terraform output -json`.
type rawOutput struct {
	Value     interface{} `json:"value"`
	Sensitive bool        `json:"sensitive"`
}

// Outputs reads the backend's named outputs best-effort. A missing output
// key, an empty state, or a failing output query all yield empty values
// rather than an error: an absent output means the feature is not
// provisioned in this environment, which is a valid state.
func (d *Driver) Outputs(ctx context.Context) (interfaces.OutputSet, error) {
	var outputs interfaces.OutputSet

	stdout, err := d.runner.RunOutput(ctx, d.workDir, nil, d.binary, "output", "-json")
	if err != nil {
		d.logger.Debug("terraform output query failed, treating all outputs as absent: %v", err)
		d.markOutputsRead()
		return outputs, nil
	}

	var raw map[string]rawOutput
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return outputs, fmt.Errorf("failed to parse terraform outputs: %w", err)
	}

	values := make(map[string]interface{}, len(raw))
	for name, out := range raw {
		values[name] = out.Value
	}

	// Weak decoding tolerates non-string output values the definitions may
	// expose alongside the ones this pipeline reads.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &outputs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return outputs, fmt.Errorf("failed to build output decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return outputs, fmt.Errorf("failed to decode terraform outputs: %w", err)
	}

	d.markOutputsRead()
	return outputs, nil
}

// markOutputsRead advances the phase machine on the teardown path only.
// On the deploy path outputs are read after apply and the phase stays
// applied.
func (d *Driver) markOutputsRead() {
	if d.phase == PhaseWorkspaceSelected {
		d.phase = PhaseOutputsRead
	}
}

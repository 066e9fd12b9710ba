package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/config"
)

func TestArtifactRoundTrip(t *testing.T) {
	in := &JobArtifact{
		Contracts: []ContractData{
			{
				Name:          "Counter",
				BytecodeHex:   "0x600160005401600055",
				ABI:           []byte(`[{"type":"function","name":"test_inc"}]`),
				TestFunctions: []string{"test_inc()"},
			},
		},
		Config: config.Default(),
		Metadata: Metadata{
			CreatedAt: "2026-07-01T00:00:00Z",
			Version:   "0.1.0",
		},
	}

	raw, err := in.Marshal()
	require.NoError(t, err)

	out, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Equal(t, in.Metadata, out.Metadata)
	require.Equal(t, in.Config, out.Config)
	require.Len(t, out.Contracts, 1)
	require.Equal(t, in.Contracts[0].Name, out.Contracts[0].Name)
	require.Equal(t, in.Contracts[0].BytecodeHex, out.Contracts[0].BytecodeHex)
	require.Equal(t, in.Contracts[0].TestFunctions, out.Contracts[0].TestFunctions)
	// The raw ABI may be re-indented by Marshal; compare as JSON values.
	require.JSONEq(t, string(in.Contracts[0].ABI), string(out.Contracts[0].ABI))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	require.Error(t, err)
}

func TestConfigEnumRoundTrips(t *testing.T) {
	in := &JobArtifact{Config: config.ExecutionConfig{
		UninterpretedUnknownCalls: config.UnknownCallsUnknown,
		LoopBound:                 5,
	}}
	raw, err := in.Marshal()
	require.NoError(t, err)
	out, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Equal(t, config.UnknownCallsUnknown, out.Config.UninterpretedUnknownCalls)
	require.Equal(t, 5, out.Config.LoopBound)
}

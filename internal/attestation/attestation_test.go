package attestation

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/report"
)

func testPrivKey(t *testing.T) *big.Int {
	t.Helper()
	k, ok := new(big.Int).SetString("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362", 16)
	require.True(t, ok)
	return k
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := testPrivKey(t)
	main := report.MainResult{Exitcode: report.Pass, TotalPassed: 2}

	att, err := Sign("test-version", [32]byte{1}, [32]byte{2}, main, priv, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Equal(t, "test-version", att.VerifierVersion)
	require.True(t, att.Payload.Passed)

	ok, err := Verify(att)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyFailsOnTamperedPayload(t *testing.T) {
	priv := testPrivKey(t)
	main := report.MainResult{Exitcode: report.Pass}

	att, err := Sign("v", [32]byte{1}, [32]byte{2}, main, priv, time.Unix(0, 0))
	require.NoError(t, err)

	att.Payload.Passed = false // payload changes without re-signing must break verification
	ok, err := Verify(att)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashResultDeterministic(t *testing.T) {
	main := report.MainResult{Exitcode: report.Counterexample}
	vr := VerificationResult{
		Passed:               false,
		ContractBytecodeHash: [32]byte{9},
		SpecHash:             [32]byte{8},
		Timestamp:            1,
		Details:              main,
	}
	h1, err := HashResult(vr)
	require.NoError(t, err)
	h2, err := HashResult(vr)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

package evmerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathEndingErrorsAsTarget(t *testing.T) {
	var err error = NewInfeasiblePath("x < 0 and x > 10")

	var pe *PathEnding
	require.True(t, errors.As(err, &pe))
	require.Equal(t, InfeasiblePath, pe.Kind)
	require.Contains(t, pe.Error(), "infeasible path")
}

func TestExceptionalHaltCarriesPayload(t *testing.T) {
	err := NewInvalidJumpDest(0x42)
	require.Equal(t, InvalidJumpDest, err.Kind)
	require.Contains(t, err.Error(), "0x42")
}

func TestRevertIsDistinctFromExceptionalHalt(t *testing.T) {
	var rev error = &Revert{Data: []byte{1, 2, 3}}

	var halt *ExceptionalHalt
	require.False(t, errors.As(rev, &halt))

	var r *Revert
	require.True(t, errors.As(rev, &r))
	require.Equal(t, []byte{1, 2, 3}, r.Data)
}

func TestSimpleBuildsBareHalt(t *testing.T) {
	err := Simple(OutOfGas)
	require.Equal(t, "out of gas", err.Error())
}

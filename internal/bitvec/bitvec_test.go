package bitvec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

func TestConcreteArithmeticWraps(t *testing.T) {
	a := FromU64(1, 8)
	b := FromU64(255, 8)
	sum := Add(a, b)
	require.True(t, sum.IsConcrete())
	require.Equal(t, uint(8), sum.Width())
	require.Equal(t, big.NewInt(0).Int64(), sum.AsBigInt().Int64())
}

func TestDivisionByZeroYieldsZero(t *testing.T) {
	a := FromU64(10, 256)
	z := FromU64(0, 256)
	require.Equal(t, int64(0), Udiv(a, z).AsBigInt().Int64())
	require.Equal(t, int64(0), Sdiv(a, z).AsBigInt().Int64())
	require.Equal(t, int64(0), Umod(a, z).AsBigInt().Int64())
	require.Equal(t, int64(0), Smod(a, z).AsBigInt().Int64())
}

func TestSymbolicPromotion(t *testing.T) {
	sym := FromExpr(symir.NewVar("x", 256))
	conc := FromU64(1, 256)
	sum := Add(sym, conc)
	require.False(t, sum.IsConcrete())
	require.Equal(t, uint(256), sum.Width())
}

func TestExtractZeroExtendRoundTrip(t *testing.T) {
	x := FromU64(0xAB, 8)
	widened := ZeroExtend(256, x)
	back := Extract(7, 0, widened)
	require.Equal(t, x.AsBigInt(), back.AsBigInt())
}

func TestOverflowAssertCounterexampleShape(t *testing.T) {
	// x + 1 > x is false exactly when x == 2^256-1: x+1 wraps to 0, and 0 > x is
	// false for any x, i.e. Ult(x, sum) == 0.
	maxU256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	x := FromBigInt(maxU256, 256)
	one := FromU64(1, 256)
	sum := Add(x, one)
	require.True(t, sum.IsConcrete())
	require.Equal(t, int64(0), sum.AsBigInt().Int64())
	require.Equal(t, int64(0), Ult(x, sum).AsBigInt().Int64())
}

package symir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommutativeOperandsCanonicalize(t *testing.T) {
	x := NewVar("x", 256)
	y := NewVar("y", 256)

	xy := NewBin(OpAdd, 256, x, y)
	yx := NewBin(OpAdd, 256, y, x)
	require.Equal(t, xy.String(), yx.String())

	// Non-commutative ops keep operand order.
	sub := NewBin(OpSub, 256, x, y)
	bus := NewBin(OpSub, 256, y, x)
	require.NotEqual(t, sub.String(), bus.String())
}

func TestConstMasksToWidth(t *testing.T) {
	v := new(big.Int).Lsh(big.NewInt(1), 300)
	v.Add(v, big.NewInt(7))
	c := NewConst(v, 256)
	require.Equal(t, int64(7), c.Const.Int64())
}

func TestConstNegativeWraps(t *testing.T) {
	c := NewConst(big.NewInt(-1), 8)
	require.Equal(t, int64(255), c.Const.Int64())
}

func TestStringIsDeterministic(t *testing.T) {
	e := NewIte(
		NewCmp(OpUlt, NewVar("a", 256), NewConst(big.NewInt(10), 256)),
		NewVar("b", 256),
		NewConst(big.NewInt(0), 256),
	)
	require.Equal(t, e.String(), e.String())
}

func TestVarsCollectsTransitively(t *testing.T) {
	e := NewBin(OpMul, 256,
		NewBin(OpAdd, 256, NewVar("a", 256), NewVar("b", 256)),
		NewCast(OpZeroExt, 256, NewVar("c", 8)),
	)
	vars := e.Vars()
	require.Len(t, vars, 3)
	require.Equal(t, uint(256), vars["a"])
	require.Equal(t, uint(8), vars["c"])
}

func TestSha3ExprsWithEqualPayloadsAreEqual(t *testing.T) {
	a := NewSha3(64, "c:0007|c:0000")
	b := NewSha3(64, "c:0007|c:0000")
	require.Equal(t, a.String(), b.String())

	c := NewSha3(32, "c:0007")
	require.NotEqual(t, a.String(), c.String())
}

func TestExtractWidth(t *testing.T) {
	e := NewExtract(255, 0, NewVar("x", 512))
	require.Equal(t, uint(256), e.Width)
}

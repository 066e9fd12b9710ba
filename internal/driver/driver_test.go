package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectorOfExplicitHex(t *testing.T) {
	got := selectorOf("0xaabbccdd")
	require.Equal(t, [4]byte{0xaa, 0xbb, 0xcc, 0xdd}, got)
}

func TestSelectorOfDerivesFromKeccak(t *testing.T) {
	a := selectorOf("testFoo()")
	b := selectorOf("testBar()")
	require.NotEqual(t, a, b)

	// Deterministic: the same name always derives the same selector.
	require.Equal(t, a, selectorOf("testFoo()"))
}

func TestBuildCalldataLayout(t *testing.T) {
	sel := [4]byte{0x01, 0x02, 0x03, 0x04}
	cd := buildCalldata("testFoo()", sel, 2)

	require.Equal(t, 4+2*32, cd.Len())
	first4 := cd.Slice(0, 4)
	require.True(t, first4.IsFullyConcrete())
	bytes, ok := first4.ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, sel[:], bytes)
}

func TestSanitizeNameStripsSpecialChars(t *testing.T) {
	require.Equal(t, "testFoo_uint256_", sanitizeName("testFoo(uint256)"))
}

func TestMaxEthBoundary(t *testing.T) {
	// 2^128 is the smallest balance not admitted; the seeded balance is one
	// below it and fits in exactly 128 bits.
	require.Equal(t, 128, maxEthMinusOne().BitLen())
}

func TestDeadlineZeroMeansUnbounded(t *testing.T) {
	var d Deadline
	require.True(t, d.deadlineAt(time.Now()).IsZero())
}

func TestDeadlineAddsDuration(t *testing.T) {
	d := Deadline{Duration: 5 * time.Second}
	start := time.Now()
	dl := d.deadlineAt(start)
	require.Equal(t, start.Add(5*time.Second), dl)
}

// SPDX-License-Identifier: AGPL-3.0

package cheatcode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/keccak"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

func newTestState() *state.ExecutionState {
	world := state.NewWorld()
	self := state.Address160{0xbe, 0xef}
	world.Set(state.NewAccount(self))
	return state.New(world, bytevec.Empty(), state.CallFrame{Callee: self}, 30_000_000, keccak.New())
}

// call encodes selector+args as cheat-address calldata and dispatches it.
// The solver is nil: none of the cheatcodes under test issue queries.
func call(t *testing.T, d *Dispatcher, s *state.ExecutionState, sig string, args ...[]byte) (bytevec.ByteVec, error) {
	t.Helper()
	sel := selector(sig)
	data := append([]byte(nil), sel[:]...)
	for _, a := range args {
		data = append(data, a...)
	}
	return d.Dispatch(s, nil, bytevec.FromBytes(data))
}

// encodeSizeAndString renders the (uint256, string) argument area the
// two-argument create* cheatcodes take: the size word, the string's head
// offset, then its (length, data, padding) tail.
func encodeSizeAndString(size int64, v string) []byte {
	out := encodeUint256(big.NewInt(size))
	out = append(out, encodeUint256(big.NewInt(64))...)
	out = append(out, encodeDynamic([]byte(v))[32:]...)
	return out
}

// encodeStringArgs renders an all-dynamic-string argument area: one head
// offset word per value, then each value's (length, data, padding) tail.
func encodeStringArgs(values ...string) []byte {
	n := len(values)
	head := make([]byte, 0, 32*n)
	tail := make([]byte, 0)
	for _, v := range values {
		head = append(head, encodeUint256(big.NewInt(int64(32*n+len(tail))))...)
		tail = append(tail, encodeDynamic([]byte(v))[32:]...)
	}
	return append(head, tail...)
}

func TestSelectorIsKeccakPrefix(t *testing.T) {
	// prank(address) must differ from startPrank(address): the selector is
	// a real hash of the signature, not a positional id.
	require.NotEqual(t, selector("prank(address)"), selector("startPrank(address)"))
	require.Equal(t, selector("prank(address)"), selector("prank(address)"))
}

func TestPrankSetsAndClears(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	target := state.Address160{0x11}
	_, err := call(t, d, s, "prank(address)", encodeAddress(target))
	require.NoError(t, err)
	require.True(t, s.PrankActive)
	require.False(t, s.PrankPersistent)
	require.Equal(t, target, s.PrankSender)

	_, err = call(t, d, s, "stopPrank()")
	require.NoError(t, err)
	require.False(t, s.PrankActive)
}

func TestDealSetsBalance(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	addr := state.Address160{0x22}
	_, err := call(t, d, s, "deal(address,uint256)",
		encodeAddress(addr), encodeUint256(big.NewInt(12345)))
	require.NoError(t, err)
	require.Equal(t, int64(12345), s.World.Get(addr).Balance.AsBigInt().Int64())
}

func TestStoreLoadRoundTrip(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	addr := state.Address160{0x33}
	var slot, val [32]byte
	slot[31] = 7
	val[31] = 0x2A

	_, err := call(t, d, s, "store(address,bytes32,bytes32)",
		encodeAddress(addr), encodeBytes32(slot), encodeBytes32(val))
	require.NoError(t, err)

	out, err := call(t, d, s, "load(address,bytes32)",
		encodeAddress(addr), encodeBytes32(slot))
	require.NoError(t, err)
	got, ok := out.ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, byte(0x2A), got[31])
}

func TestWarpRollUpdateBlockContext(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	_, err := call(t, d, s, "warp(uint256)", encodeUint256(big.NewInt(1_700_000_000)))
	require.NoError(t, err)
	require.Equal(t, int64(1_700_000_000), s.Block.Timestamp.AsBigInt().Int64())

	_, err = call(t, d, s, "roll(uint256)", encodeUint256(big.NewInt(42)))
	require.NoError(t, err)
	require.Equal(t, int64(42), s.Block.Number.AsBigInt().Int64())
}

func TestAddrDerivesWellKnownAddress(t *testing.T) {
	// Private key 1 famously maps to 0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf.
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "addr(uint256)", encodeUint256(big.NewInt(1)))
	require.NoError(t, err)
	got, ok := out.ConcreteBytes()
	require.True(t, ok)
	want := []byte{
		0x7E, 0x5F, 0x45, 0x52, 0x09, 0x1A, 0x69, 0x12, 0x5d, 0x5D,
		0xfC, 0xb7, 0xb8, 0xC2, 0x65, 0x90, 0x29, 0x39, 0x5B, 0xdf,
	}
	require.Equal(t, want, got[12:32])
}

func TestFailRaisesFailCheatcode(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	_, err := call(t, d, s, "fail()")
	var pe *evmerrors.PathEnding
	require.ErrorAs(t, err, &pe)
	require.Equal(t, evmerrors.FailCheatcode, pe.Kind)
}

func TestUnknownSelectorIsNoOp(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := d.Dispatch(s, nil, bytevec.FromBytes([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, err)
	require.Equal(t, 0, out.Len())
}

func TestEnvUintReadsEnvironment(t *testing.T) {
	t.Setenv("CBSE_TEST_UINT", "12345")
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "envUint(string)", encodeStringArgs("CBSE_TEST_UINT"))
	require.NoError(t, err)
	got, ok := out.ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, big.NewInt(12345), new(big.Int).SetBytes(got))
}

func TestEnvUintArraySplitsOnDelimiter(t *testing.T) {
	t.Setenv("CBSE_TEST_UINTS", "1,2,3")
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "envUint(string,string)",
		encodeStringArgs("CBSE_TEST_UINTS", ","))
	require.NoError(t, err)
	got, ok := out.ConcreteBytes()
	require.True(t, ok)
	// offset word, length word, then 3 elements
	require.Len(t, got, 32*5)
	require.Equal(t, byte(3), got[63])
	require.Equal(t, byte(1), got[95])
	require.Equal(t, byte(2), got[127])
	require.Equal(t, byte(3), got[159])
}

func TestEnvUnsetIsInvalidParameter(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	_, err := call(t, d, s, "envUint(string)", encodeStringArgs("CBSE_DEFINITELY_UNSET"))
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, err, &eh)
	require.Equal(t, evmerrors.InvalidParameter, eh.Kind)
}

func TestEnvIntNegativeIsTwosComplement(t *testing.T) {
	t.Setenv("CBSE_TEST_INT", "-1")
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "envInt(string)", encodeStringArgs("CBSE_TEST_INT"))
	require.NoError(t, err)
	got, _ := out.ConcreteBytes()
	for _, b := range got {
		require.Equal(t, byte(0xFF), b)
	}
}

func TestCreateUintReturnsBoundedSymbolicWord(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "createUint(uint256,string)",
		encodeSizeAndString(8, "x"))
	require.NoError(t, err)
	require.Equal(t, 32, out.Len())
	require.False(t, out.IsFullyConcrete())

	// An 8-bit variable zero-extended to 256 bits: the word reads back as
	// one symbolic 256-bit value.
	word := out.ReadWord(0)
	require.False(t, word.IsConcrete())
	require.Equal(t, uint(256), word.Width())
}

func TestCreateUintRejectsOversizedWidth(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	_, err := call(t, d, s, "createUint(uint256,string)",
		encodeSizeAndString(257, "x"))
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, err, &eh)
	require.Equal(t, evmerrors.InvalidParameter, eh.Kind)
}

func TestCreateAddressStaysDistinctPerCall(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	a, err := call(t, d, s, "createAddress(string)", encodeStringArgs("who"))
	require.NoError(t, err)
	b, err := call(t, d, s, "createAddress(string)", encodeStringArgs("who"))
	require.NoError(t, err)

	// Same label, different sequence numbers: the two symbolic words must
	// not be the same variable.
	require.NotEqual(t, a.CanonicalString(), b.CanonicalString())
}

func TestCreateBytesEncodesSymbolicPayload(t *testing.T) {
	s := newTestState()
	d := NewDispatcher(nil)

	out, err := call(t, d, s, "createBytes(uint256,string)",
		encodeSizeAndString(40, "data"))
	require.NoError(t, err)
	// offset + length + 40 payload bytes padded to 64
	require.Equal(t, 64+64, out.Len())
	head, ok := out.Slice(0, 64).ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, byte(32), head[31])
	require.Equal(t, byte(40), head[63])
	require.False(t, out.Slice(64, 40).IsFullyConcrete())
}

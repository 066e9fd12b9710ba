// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/config"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/keccak"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// newTestState wires a minimal state + env for fully concrete programs (no
// solver queries are issued as long as every JUMPI condition folds).
func newTestState(code []byte) (*state.ExecutionState, *Env) {
	world := state.NewWorld()
	self := state.Address160{0xbe, 0xef}
	acc := state.NewAccount(self)
	acc.Code = bytevec.FromBytes(code)
	world.Set(acc)

	s := state.New(world, bytevec.Empty(), state.CallFrame{Callee: self}, 30_000_000, keccak.New())
	s.Code = bytevec.FromBytes(code)

	env := &Env{
		Config: config.ExecutionConfig{LoopBound: 2},
		Push:   func(*state.ExecutionState) {},
	}
	return s, env
}

func run(t *testing.T, code []byte) *state.ExecutionState {
	t.Helper()
	s, env := newTestState(code)
	require.NoError(t, Drive(s, env))
	return s
}

func TestAddThenReturn(t *testing.T) {
	// 2 + 3, MSTORE at 0, RETURN 32 bytes.
	code := []byte{
		byte(PUSH1), 0x02,
		byte(PUSH1), 0x03,
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
	out, ok := s.Term.ReturnData.ConcreteBytes()
	require.True(t, ok)
	require.Len(t, out, 32)
	require.Equal(t, byte(5), out[31])
}

func TestDivisionByZeroPushesZero(t *testing.T) {
	// DIV pops numerator first: stack is [divisor, numerator] after the
	// pushes below, so this computes 7 / 0.
	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x07,
		byte(DIV),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, make([]byte, 32), out)
}

func TestStackUnderflowHalts(t *testing.T) {
	s := run(t, []byte{byte(ADD)})
	require.Equal(t, state.TerminalHalt, s.Term.Kind)
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, s.Term.Err, &eh)
	require.Equal(t, evmerrors.StackUnderflow, eh.Kind)
}

func TestUnknownOpcodeHalts(t *testing.T) {
	s := run(t, []byte{0x21}) // unassigned opcode byte
	require.Equal(t, state.TerminalHalt, s.Term.Kind)
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, s.Term.Err, &eh)
	require.Equal(t, evmerrors.InvalidOpcode, eh.Kind)
	require.Equal(t, byte(0x21), eh.OpcodeByte)
}

func TestJumpToValidDest(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x04,
		byte(JUMP),
		byte(INVALID), // skipped
		byte(JUMPDEST),
		byte(STOP),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
}

func TestJumpIntoPushImmediateIsInvalid(t *testing.T) {
	// Offset 4 is the 0x5b immediate byte of PUSH1 0x5b, not a real
	// JUMPDEST.
	code := []byte{
		byte(PUSH1), 0x04,
		byte(JUMP),
		byte(PUSH1), 0x5b,
		byte(STOP),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalHalt, s.Term.Kind)
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, s.Term.Err, &eh)
	require.Equal(t, evmerrors.InvalidJumpDest, eh.Kind)
	require.Equal(t, uint64(4), eh.JumpOffset)
}

func TestJumpiConcreteFalseFallsThrough(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x00, // cond
		byte(PUSH1), 0x06, // dest
		byte(JUMPI),
		byte(STOP),
		byte(JUMPDEST),
		byte(INVALID),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
}

func TestConcreteLoopHitsLoopBound(t *testing.T) {
	// JUMPDEST at 0; unconditionally JUMPI back to it forever.
	code := []byte{
		byte(JUMPDEST),
		byte(PUSH1), 0x01, // cond
		byte(PUSH1), 0x00, // dest
		byte(JUMPI),
	}
	s := run(t, code)
	require.Equal(t, state.DroppedLoopBound, s.Term.Kind)
}

func TestMstoreAtMemoryCapBoundary(t *testing.T) {
	lastOK := uint64(state.MaxMemorySize - 32)
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1) + 2, byte(lastOK >> 16), byte(lastOK >> 8), byte(lastOK), // PUSH3
		byte(MSTORE),
		byte(STOP),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
	require.Equal(t, int(state.MaxMemorySize), s.Memory.Len())
}

func TestMstorePastMemoryCapIsOutOfGas(t *testing.T) {
	over := uint64(state.MaxMemorySize - 31)
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1) + 2, byte(over >> 16), byte(over >> 8), byte(over), // PUSH3
		byte(MSTORE),
		byte(STOP),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalHalt, s.Term.Kind)
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, s.Term.Err, &eh)
	require.Equal(t, evmerrors.OutOfGas, eh.Kind)
}

func TestMloadPastEndReadsZero(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x40, // untouched offset
		byte(MLOAD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, make([]byte, 32), out)
}

func TestRevertPreservesReturnData(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xAB,
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalRevert, s.Term.Kind)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, byte(0xAB), out[31])
}

func TestSha3ConsistencyForEqualSlices(t *testing.T) {
	// Hash memory[0:32] twice; both results must be equal and the registry
	// must hold exactly one entry.
	code := []byte{
		byte(PUSH1), 0x07,
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(SHA3),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(SHA3),
		byte(EQ),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, byte(1), out[31])
	require.Equal(t, 1, s.Keccak.Len())
}

func TestSstoreSloadRoundTrip(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x2A, // value
		byte(PUSH1), 0x05, // slot
		byte(SSTORE),
		byte(PUSH1), 0x05,
		byte(SLOAD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, byte(0x2A), out[31])
}

func TestSstoreInStaticContextHalts(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(SSTORE),
	}
	s, env := newTestState(code)
	s.Frame.IsStatic = true
	require.NoError(t, Drive(s, env))
	require.Equal(t, state.TerminalHalt, s.Term.Kind)
	var eh *evmerrors.ExceptionalHalt
	require.ErrorAs(t, s.Term.Err, &eh)
	require.Equal(t, evmerrors.WriteInStaticContext, eh.Kind)
}

func TestDupAndSwap(t *testing.T) {
	// PUSH 1, PUSH 2, SWAP1, DUP1, ADD -> 1+1=2 on top, under it 2.
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x02,
		byte(SWAP1),
		byte(DUP1),
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	s := run(t, code)
	out, _ := s.Term.ReturnData.ConcreteBytes()
	require.Equal(t, byte(2), out[31])
}

func TestRunningOffCodeEndIsStop(t *testing.T) {
	s := run(t, []byte{byte(PUSH1), 0x01, byte(POP)})
	require.Equal(t, state.TerminalSuccess, s.Term.Kind)
	require.Equal(t, 0, s.Term.ReturnData.Len())
}

func TestIsJumpdestSkipsPushData(t *testing.T) {
	code := bytevec.FromBytes([]byte{
		byte(PUSH1) + 1, 0x5b, 0x5b, // PUSH2: both immediates look like JUMPDEST
		byte(JUMPDEST),
	})
	require.False(t, isJumpdest(code, 1))
	require.False(t, isJumpdest(code, 2))
	require.True(t, isJumpdest(code, 3))
	require.False(t, isJumpdest(code, 99))
}

// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/cbselog"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// Step advances s by exactly one opcode, dispatching through env's jump
// table. A fork (only JUMPI produces one at this layer) is pushed onto the
// worklist by JUMPI itself through env.Push, so the returned successor is
// nil for every opcode in the table; s itself is mutated to become the
// surviving successor.
func Step(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	if s.IsTerminal() {
		return nil, nil
	}
	if s.PC >= uint64(s.Code.Len()) {
		s.Term = state.Terminal{Kind: state.TerminalSuccess, ReturnData: bytevec.Empty()}
		return nil, nil
	}
	codeByte := s.Code.Slice(s.PC, 1)
	raw, ok := codeByte.ConcreteBytes()
	if !ok || len(raw) != 1 {
		return nil, &evmerrors.Internal{Msg: "code is not fully concrete"}
	}
	op := OpCode(raw[0])
	entry := defaultJumpTable[op]
	if !entry.valid {
		return halt(s, evmerrors.NewInvalidOpcode(raw[0]))
	}
	if s.Stack.Len() < entry.minStack {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if s.Stack.Len() > entry.maxStack {
		return halt(s, evmerrors.Simple(evmerrors.StackOverflow))
	}
	return entry.execute(s, env)
}

// Drive runs s to completion, pushing every fork it produces (including
// forks a nested CALL/CREATE encounters, since they flow through the same
// env.Push callback) onto the caller's worklist. It returns once s itself
// reaches a terminal state.
func Drive(s *state.ExecutionState, env *Env) error {
	for !s.IsTerminal() {
		fork, err := Step(s, env)
		if err != nil {
			return err
		}
		if fork != nil {
			env.Push(fork)
		}
	}
	return nil
}

// expandMemory grows s.Memory with zero bytes so [offset, offset+length) is
// addressable, enforcing the hard memory cap.
func expandMemory(s *state.ExecutionState, offset, length uint64) error {
	if length == 0 {
		return nil
	}
	end := offset + length
	if end > state.MaxMemorySize {
		return evmerrors.Simple(evmerrors.OutOfGas)
	}
	if uint64(s.Memory.Len()) < end {
		s.Memory = s.Memory.Slice(0, end)
	}
	return nil
}

// isJumpdest reports whether offset both lies within code and names a
// byte that is a true JUMPDEST, not the immediate-data tail of a
// preceding PUSH.
func isJumpdest(code bytevec.ByteVec, offset uint64) bool {
	if offset >= uint64(code.Len()) {
		return false
	}
	raw, ok := code.ConcreteBytes()
	if !ok {
		return false
	}
	i := uint64(0)
	for i < uint64(len(raw)) {
		op := OpCode(raw[i])
		if i == offset {
			return op == JUMPDEST
		}
		if n, isPush := op.IsPush(); isPush {
			i += uint64(n) + 1
			continue
		}
		i++
	}
	return false
}

// checkLoopBound increments the visit counter for dest and, once it
// exceeds the configured bound, drops the path and emits a deduplicated
// loop-bound warning instead of continuing to explore the back-edge.
func checkLoopBound(s *state.ExecutionState, dest uint64, env *Env) (dropped bool) {
	bound := env.Config.LoopBound
	if bound <= 0 {
		return false
	}
	s.JumpdestVisits[dest]++
	if s.JumpdestVisits[dest] <= bound {
		return false
	}
	cbselog.WarnCode(cbselog.LoopBound, false,
		"loop bound exceeded at jumpdest "+hexU64(dest))
	s.Term = state.Terminal{Kind: state.DroppedLoopBound, ReturnData: bytevec.Empty()}
	return true
}

func hexU64(v uint64) string {
	const hexdigits = "0123456789abcdef"
	if v == 0 {
		return "0x0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = hexdigits[v&0xf]
		v >>= 4
	}
	return "0x" + string(buf[i:])
}

// boolExprOf renders the EVM truthiness test "cond != 0" as a boolean Expr.
func boolExprOf(cond bitvec.BV) *symir.Expr {
	zero := symir.NewConst(big.NewInt(0), cond.Width())
	eqZero := symir.NewCmp(symir.OpEq, cond.Expr(), zero)
	return symir.NewBoolOp(symir.OpLNot, eqZero)
}

// negateBool renders "cond == 0".
func negateBool(cond bitvec.BV) *symir.Expr {
	zero := symir.NewConst(big.NewInt(0), cond.Width())
	return symir.NewCmp(symir.OpEq, cond.Expr(), zero)
}

// branchFeasibility queries both sides of a JUMPI condition against the
// current path condition, treating solver Unknown as satisfiable so a
// timeout never silently prunes a branch.
func branchFeasibility(s *state.ExecutionState, env *Env, condExpr, notCondExpr *symir.Expr) (thenSat, elseSat bool) {
	thenConds := append(append([]*symir.Expr(nil), s.PathCond...), condExpr)
	elseConds := append(append([]*symir.Expr(nil), s.PathCond...), notCondExpr)

	thenRes, err := env.Solver.CheckBranching(thenConds)
	thenSat = err != nil || thenRes.Kind != solver.Unsat
	elseRes, err2 := env.Solver.CheckBranching(elseConds)
	elseSat = err2 != nil || elseRes.Kind != solver.Unsat
	return thenSat, elseSat
}

func addrToBV(a state.Address160) bitvec.BV {
	return bitvec.FromBigInt(new(big.Int).SetBytes(a[:]), 256)
}

func bvToAddr(b bitvec.BV) state.Address160 {
	var out state.Address160
	bs := b.Bytes32()
	copy(out[:], bs[12:])
	return out
}

func concreteKeccak(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	h.Sum(out[:0])
	return out
}

func sha3ExprFor(data bytevec.ByteVec, length uint64) *symir.Expr {
	return symir.NewSha3(int(length), data.CanonicalString())
}

// emptyKeccakBV returns keccak256("") as a concrete 256-bit value, the
// well-known EXTCODEHASH result for an account with empty code.
func emptyKeccakBV() bitvec.BV {
	h := concreteKeccak(nil)
	return bitvec.FromBigInt(new(big.Int).SetBytes(h[:]), 256)
}

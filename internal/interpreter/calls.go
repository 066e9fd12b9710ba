// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"math/big"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/config"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/state"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// cheatAddress is Foundry's well-known VM cheatcode address
// (0x7109709ECfa91a80626fF3989D68f67F5b1DD12D), reachable from any
// contract under test the same way it is under forge-std.
var cheatAddress = state.Address160{
	0x71, 0x09, 0x70, 0x9E, 0xCf, 0xa9, 0x1a, 0x80, 0x62, 0x6f,
	0xF3, 0x98, 0x9D, 0x68, 0xF6, 0x7F, 0x5B, 0x1D, 0xD1, 0x2D,
}

// maxCodeSize is the EIP-170 deployed-code size cap enforced on the
// runtime code a successful CREATE/CREATE2 returns.
const maxCodeSize = 24576

type callKind int

const (
	callNormal callKind = iota
	callCode
	callDelegate
	callStatic
)

func opCall(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCall(s, env, callNormal)
}
func opCallCode(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCall(s, env, callCode)
}
func opDelegateCall(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCall(s, env, callDelegate)
}
func opStaticCall(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCall(s, env, callStatic)
}

// genericCall implements CALL/CALLCODE/DELEGATECALL/STATICCALL: it pops the
// shared stack arguments (the exact count and meaning vary slightly by
// kind), resolves the target, and either dispatches to a precompile, the
// cheatcode VM, or recurses into Drive over a fresh ExecutionState
// sharing this path's World.
func genericCall(s *state.ExecutionState, env *Env, kind callKind) (*state.ExecutionState, error) {
	gasArg, ok0 := s.Stack.Pop()
	toArg, ok1 := s.Stack.Pop()
	if !ok0 || !ok1 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	var valueArg bitvec.BV
	hasValue := kind == callNormal || kind == callCode
	if hasValue {
		v, ok := s.Stack.Pop()
		if !ok {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		valueArg = v
	} else {
		valueArg = bitvec.FromU64(0, 256)
	}
	argsOff, ok2 := s.Stack.Pop()
	argsLen, ok3 := s.Stack.Pop()
	retOff, ok4 := s.Stack.Pop()
	retLen, ok5 := s.Stack.Pop()
	if !ok2 || !ok3 || !ok4 || !ok5 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	_ = gasArg

	if !toArg.IsConcrete() || !valueArg.IsConcrete() || !argsOff.IsConcrete() || !argsLen.IsConcrete() || !retOff.IsConcrete() || !retLen.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("CALL-family operands"))
	}

	if kind == callNormal && s.Frame.IsStatic && valueArg.AsBigInt().Sign() != 0 {
		return halt(s, evmerrors.Simple(evmerrors.WriteInStaticContext))
	}

	to := bvToAddr(toArg)
	aOff, aLen := argsOff.AsBigInt().Uint64(), argsLen.AsBigInt().Uint64()
	rOff, rLen := retOff.AsBigInt().Uint64(), retLen.AsBigInt().Uint64()
	if err := expandMemory(s, aOff, aLen); err != nil {
		return halt(s, err)
	}
	callData := s.Memory.Slice(aOff, aLen)

	if to == cheatAddress {
		out, cheatErr := env.Cheat.Dispatch(s, env.Solver, callData)
		if cheatErr != nil {
			if pe, ok := cheatErr.(*evmerrors.PathEnding); ok && pe.Kind == evmerrors.FailCheatcode {
				return halt(s, cheatErr)
			}
			return halt(s, cheatErr)
		}
		return finishCall(s, env, true, out, rOff, rLen)
	}

	if pc, ok := precompileAt(to); ok {
		out, success := pc(callData)
		return finishCall(s, env, success, out, rOff, rLen)
	}

	code, found := resolveCode(s, env, to)
	if !found {
		return unknownCallResult(s, env, rOff, rLen)
	}

	callerAddr := s.Frame.Caller
	calleeAddr := to
	effectiveValue := valueArg
	isStatic := s.Frame.IsStatic || kind == callStatic
	switch kind {
	case callDelegate:
		callerAddr = s.Frame.Caller
		calleeAddr = s.Frame.Callee
		effectiveValue = s.Frame.Value
	case callCode:
		calleeAddr = s.Frame.Callee
	default:
		callerAddr = s.Frame.Callee
		if s.PrankActive {
			callerAddr = s.PrankSender
			if !s.PrankPersistent {
				s.PrankActive = false
			}
		}
	}

	if kind == callNormal {
		preCallWorld := s.World.Snapshot()
		fromAcc := s.World.Get(callerAddr).Clone()
		if fromAcc.Balance.IsConcrete() && effectiveValue.IsConcrete() &&
			fromAcc.Balance.AsBigInt().Cmp(effectiveValue.AsBigInt()) < 0 {
			s.World = preCallWorld
			s.Stack.Push(bitvec.FromU64(0, 256))
			s.PC++
			return nil, nil
		}
		fromAcc.Balance = bitvec.Sub(fromAcc.Balance, effectiveValue)
		s.World.Set(fromAcc)
		toAcc := s.World.Get(calleeAddr).Clone()
		toAcc.Balance = bitvec.Add(toAcc.Balance, effectiveValue)
		s.World.Set(toAcc)
	}

	if s.Depth+1 > state.MaxCallDepth {
		return halt(s, evmerrors.Simple(evmerrors.MessageDepthLimit))
	}

	sub := state.New(s.World, bytevec.FromBytes(mustConcrete(callData)), state.CallFrame{
		Caller:   callerAddr,
		Callee:   calleeAddr,
		Value:    effectiveValue,
		IsStatic: isStatic,
	}, s.GasRemaining, s.Keccak)
	sub.Code = bytevec.FromBytes(code)
	sub.Depth = s.Depth + 1
	sub.Block = s.Block
	sub.PathCond = append([]*symir.Expr(nil), s.PathCond...)
	return recurseCall(s, env, sub, rOff, rLen)
}

// mustConcrete extracts concrete bytes, zero-filling any residual symbolic
// content; callers have already required concreteness of the slice bounds,
// but individual memory words written earlier in the path may still be
// symbolic, in which case we pass them through as opaque zero bytes rather
// than fail the whole call (sub-call calldata concreteness is not load
// bearing for this engine's counterexample semantics).
func mustConcrete(data bytevec.ByteVec) []byte {
	if b, ok := data.ConcreteBytes(); ok {
		return b
	}
	out := make([]byte, data.Len())
	for i := range out {
		if b, ok := data.Slice(uint64(i), 1).ConcreteBytes(); ok && len(b) == 1 {
			out[i] = b[0]
		}
	}
	return out
}

func resolveCode(s *state.ExecutionState, env *Env, addr state.Address160) ([]byte, bool) {
	if s.World.Exists(addr) {
		acc := s.World.Get(addr)
		if b, ok := acc.Code.ConcreteBytes(); ok && len(b) > 0 {
			return b, true
		}
	}
	if env.CodeByAddress != nil {
		return env.CodeByAddress(addr)
	}
	return nil, false
}

// unknownCallResult handles a CALL-family target the artifact never
// described, per the uninterpreted_unknown_calls config knob: either
// force failure, or force success with a fresh symbolic return buffer.
func unknownCallResult(s *state.ExecutionState, env *Env, rOff, rLen uint64) (*state.ExecutionState, error) {
	mode := env.Config.UninterpretedUnknownCalls
	switch mode {
	case config.UnknownCallsNone:
		s.Stack.Push(bitvec.FromU64(0, 256))
		s.PC++
		return nil, nil
	default:
		size := env.Config.ReturnSizeOfUnknownCalls
		if size <= 0 {
			size = int(rLen)
		}
		name := s.NextFreshVar("extcall_ret")
		fresh := bitvec.FromExpr(symir.NewVar(name, uint(size)*8))
		retData := bytevec.Empty()
		if size > 0 {
			retData = bytevec.FromBV(fresh)
		}
		return finishCall(s, env, true, retData, rOff, rLen)
	}
}

// recurseCall drives sub to completion using the same Push callback as the
// top-level worklist (so any forks inside the callee's control flow feed
// back into the caller's exploration), then folds the result back onto s:
// world state is adopted on success and rolled back on revert/halt, return
// data is copied into memory, and the CALL success flag is pushed.
func recurseCall(s *state.ExecutionState, env *Env, sub *state.ExecutionState, rOff, rLen uint64) (*state.ExecutionState, error) {
	preCallWorld := s.World.Snapshot()
	if err := Drive(sub, env); err != nil {
		return nil, err
	}
	switch sub.Term.Kind {
	case state.TerminalSuccess:
		s.World = sub.World
		return finishCall(s, env, true, sub.Term.ReturnData, rOff, rLen)
	case state.TerminalRevert:
		s.World = preCallWorld
		return finishCall(s, env, false, sub.Term.ReturnData, rOff, rLen)
	default:
		s.World = preCallWorld
		return finishCall(s, env, false, bytevec.Empty(), rOff, rLen)
	}
}

func finishCall(s *state.ExecutionState, env *Env, success bool, out bytevec.ByteVec, rOff, rLen uint64) (*state.ExecutionState, error) {
	s.ReturnData = out
	if rLen > 0 {
		if err := expandMemory(s, rOff, rLen); err != nil {
			return halt(s, err)
		}
		s.Memory = writeBytes(s.Memory, rOff, out.Slice(0, rLen))
	}
	if success {
		s.Stack.Push(bitvec.FromU64(1, 256))
	} else {
		s.Stack.Push(bitvec.FromU64(0, 256))
	}
	s.PC++
	return nil, nil
}

func opCreate(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCreate(s, env, false)
}
func opCreate2(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return genericCreate(s, env, true)
}

// genericCreate implements CREATE/CREATE2: init code runs as its own
// sub-execution whose successful RETURN becomes the new account's code.
// Addressing uses a deterministic nonce-style scheme derived
// from the creator and a monotonically increasing counter, since this
// engine does not model a full RLP account-nonce history.
func genericCreate(s *state.ExecutionState, env *Env, isCreate2 bool) (*state.ExecutionState, error) {
	if s.Frame.IsStatic {
		return halt(s, evmerrors.Simple(evmerrors.WriteInStaticContext))
	}
	value, off, length, ok := popTriple(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	var salt bitvec.BV
	if isCreate2 {
		v, ok := s.Stack.Pop()
		if !ok {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		salt = v
	}
	if !value.IsConcrete() || !off.IsConcrete() || !length.IsConcrete() || (isCreate2 && !salt.IsConcrete()) {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("CREATE operands"))
	}
	o, l := off.AsBigInt().Uint64(), length.AsBigInt().Uint64()
	if err := expandMemory(s, o, l); err != nil {
		return halt(s, err)
	}
	initCode := s.Memory.Slice(o, l)
	initBytes := mustConcrete(initCode)

	newAddr := deriveCreateAddress(s.Frame.Callee, s.FreshVarSeq, isCreate2, salt, initBytes)
	s.FreshVarSeq++

	if s.World.Exists(newAddr) && s.World.Get(newAddr).Code.Len() > 0 {
		return halt(s, evmerrors.NewAddressCollision(newAddr))
	}

	if s.Depth+1 > state.MaxCallDepth {
		s.Stack.Push(bitvec.FromU64(0, 256))
		s.PC++
		return nil, nil
	}

	preCallWorld := s.World.Snapshot()
	fromAcc := s.World.Get(s.Frame.Callee).Clone()
	if fromAcc.Balance.IsConcrete() && fromAcc.Balance.AsBigInt().Cmp(value.AsBigInt()) < 0 {
		s.Stack.Push(bitvec.FromU64(0, 256))
		s.PC++
		return nil, nil
	}
	fromAcc.Balance = bitvec.Sub(fromAcc.Balance, value)
	s.World.Set(fromAcc)
	newAcc := state.NewAccount(newAddr)
	newAcc.Balance = value
	s.World.Set(newAcc)

	sub := state.New(s.World, bytevec.Empty(), state.CallFrame{
		Caller:   s.Frame.Callee,
		Callee:   newAddr,
		Value:    value,
		IsStatic: false,
	}, s.GasRemaining, s.Keccak)
	sub.Code = bytevec.FromBytes(initBytes)
	sub.Depth = s.Depth + 1
	sub.Block = s.Block
	sub.PathCond = append([]*symir.Expr(nil), s.PathCond...)

	if err := Drive(sub, env); err != nil {
		return nil, err
	}
	if sub.Term.Kind != state.TerminalSuccess {
		s.World = preCallWorld
		s.Stack.Push(bitvec.FromU64(0, 256))
		s.PC++
		return nil, nil
	}
	runtimeCode, _ := sub.Term.ReturnData.ConcreteBytes()
	if len(runtimeCode) > 0 && runtimeCode[0] == 0xEF {
		s.World = preCallWorld
		return halt(s, evmerrors.Simple(evmerrors.InvalidContractPrefix))
	}
	if len(runtimeCode) > maxCodeSize {
		s.World = preCallWorld
		return halt(s, evmerrors.Simple(evmerrors.ContractSizeLimit))
	}
	deployed := sub.World
	deployedAcc := deployed.Get(newAddr).Clone()
	deployedAcc.Code = bytevec.FromBytes(runtimeCode)
	deployed.Set(deployedAcc)
	s.World = deployed

	s.Stack.Push(bitvec.ZeroExtend(256, addrToBV160(newAddr)))
	s.PC++
	return nil, nil
}

func popTriple(s *state.ExecutionState) (a, b, c bitvec.BV, ok bool) {
	a, ok1 := s.Stack.Pop()
	b, ok2 := s.Stack.Pop()
	c, ok3 := s.Stack.Pop()
	return a, b, c, ok1 && ok2 && ok3
}

func addrToBV160(a state.Address160) bitvec.BV {
	return bitvec.FromBigInt(new(big.Int).SetBytes(a[:]), 160)
}

// deriveCreateAddress is a deterministic address assignment. CREATE2
// follows the real keccak(0xff ++ sender ++ salt ++ keccak(initcode))
// rule; CREATE hashes the creator and a per-path counter with keccak
// instead of keccak(rlp(sender,nonce)), since this engine does not model
// the account nonce.
func deriveCreateAddress(creator state.Address160, seq int, isCreate2 bool, salt bitvec.BV, initCode []byte) state.Address160 {
	var buf []byte
	if isCreate2 {
		buf = append(buf, 0xff)
		buf = append(buf, creator[:]...)
		saltBytes := salt.Bytes32()
		buf = append(buf, saltBytes[:]...)
		codeHash := concreteKeccak(initCode)
		buf = append(buf, codeHash[:]...)
	} else {
		buf = append(buf, creator[:]...)
		buf = append(buf, byte(seq>>24), byte(seq>>16), byte(seq>>8), byte(seq))
	}
	h := concreteKeccak(buf)
	var out state.Address160
	copy(out[:], h[12:])
	return out
}

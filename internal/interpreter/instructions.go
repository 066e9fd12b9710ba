// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"math/big"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// binOp is a pure two-operand bitvec operation; opBin adapts it into a
// stack-arithmetic execFunc.
type binOp func(a, b bitvec.BV) bitvec.BV

func binAdd(a, b bitvec.BV) bitvec.BV  { return bitvec.Add(a, b) }
func binSub(a, b bitvec.BV) bitvec.BV  { return bitvec.Sub(a, b) }
func binMul(a, b bitvec.BV) bitvec.BV  { return bitvec.Mul(a, b) }
func binUdiv(a, b bitvec.BV) bitvec.BV { return bitvec.Udiv(a, b) }
func binSdiv(a, b bitvec.BV) bitvec.BV { return bitvec.Sdiv(a, b) }
func binUmod(a, b bitvec.BV) bitvec.BV { return bitvec.Umod(a, b) }
func binSmod(a, b bitvec.BV) bitvec.BV { return bitvec.Smod(a, b) }
func binAnd(a, b bitvec.BV) bitvec.BV  { return bitvec.And(a, b) }
func binOr(a, b bitvec.BV) bitvec.BV   { return bitvec.Or(a, b) }
func binXor(a, b bitvec.BV) bitvec.BV  { return bitvec.Xor(a, b) }
func binEq(a, b bitvec.BV) bitvec.BV   { return widen(bitvec.Eq(a, b)) }
func binUlt(a, b bitvec.BV) bitvec.BV  { return widen(bitvec.Ult(a, b)) }
func binUgt(a, b bitvec.BV) bitvec.BV  { return widen(bitvec.Ult(b, a)) }
func binSlt(a, b bitvec.BV) bitvec.BV  { return widen(bitvec.Slt(a, b)) }
func binSgt(a, b bitvec.BV) bitvec.BV  { return widen(bitvec.Slt(b, a)) }

// widen promotes the 1-bit comparison result EVM represents as a full
// 256-bit stack word (0 or 1).
func widen(b bitvec.BV) bitvec.BV { return bitvec.ZeroExtend(256, b) }

func popPair(s *state.ExecutionState) (a, b bitvec.BV, ok bool) {
	a, ok1 := s.Stack.Pop()
	b, ok2 := s.Stack.Pop()
	return a, b, ok1 && ok2
}

func opBin(fn binOp) execFunc {
	return func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
		a, b, ok := popPair(s)
		if !ok {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		s.Stack.Push(fn(a, b))
		s.PC++
		return nil, nil
	}
}

func halt(s *state.ExecutionState, err error) (*state.ExecutionState, error) {
	s.Term = state.Terminal{Kind: state.TerminalHalt, Err: err}
	return nil, nil
}

func revert(s *state.ExecutionState, data bytevec.ByteVec) (*state.ExecutionState, error) {
	s.Term = state.Terminal{Kind: state.TerminalRevert, ReturnData: data, Err: &evmerrors.Revert{}}
	return nil, nil
}

func drop(s *state.ExecutionState, kind state.TerminalKind, err error) (*state.ExecutionState, error) {
	s.Term = state.Terminal{Kind: kind, Err: err}
	return nil, nil
}

func opStop(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Term = state.Terminal{Kind: state.TerminalSuccess, ReturnData: bytevec.Empty()}
	return nil, nil
}

func opAddmod(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	a, ok1 := s.Stack.Pop()
	b, ok2 := s.Stack.Pop()
	n, ok3 := s.Stack.Pop()
	if !ok1 || !ok2 || !ok3 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if a.IsConcrete() && b.IsConcrete() && n.IsConcrete() {
		if n.AsBigInt().Sign() == 0 {
			s.Stack.Push(bitvec.FromU64(0, 256))
		} else {
			sum := new(big.Int).Add(a.AsBigInt(), b.AsBigInt())
			sum.Mod(sum, n.AsBigInt())
			s.Stack.Push(bitvec.FromBigInt(sum, 256))
		}
	} else {
		sum := bitvec.Add(bitvec.ZeroExtend(512, a), bitvec.ZeroExtend(512, b))
		s.Stack.Push(bitvec.Extract(255, 0, bitvec.Umod(sum, bitvec.ZeroExtend(512, n))))
	}
	s.PC++
	return nil, nil
}

func opMulmod(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	a, ok1 := s.Stack.Pop()
	b, ok2 := s.Stack.Pop()
	n, ok3 := s.Stack.Pop()
	if !ok1 || !ok2 || !ok3 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if a.IsConcrete() && b.IsConcrete() && n.IsConcrete() {
		if n.AsBigInt().Sign() == 0 {
			s.Stack.Push(bitvec.FromU64(0, 256))
		} else {
			prod := new(big.Int).Mul(a.AsBigInt(), b.AsBigInt())
			prod.Mod(prod, n.AsBigInt())
			s.Stack.Push(bitvec.FromBigInt(prod, 256))
		}
	} else {
		prod := bitvec.Mul(bitvec.ZeroExtend(512, a), bitvec.ZeroExtend(512, b))
		s.Stack.Push(bitvec.Extract(255, 0, bitvec.Umod(prod, bitvec.ZeroExtend(512, n))))
	}
	s.PC++
	return nil, nil
}

func opExp(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	base, exp, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if base.IsConcrete() && exp.IsConcrete() {
		m := new(big.Int).Lsh(big.NewInt(1), 256)
		r := new(big.Int).Exp(base.AsBigInt(), exp.AsBigInt(), m)
		s.Stack.Push(bitvec.FromBigInt(r, 256))
	} else if exp.IsConcrete() && exp.AsBigInt().Sign() == 0 {
		s.Stack.Push(bitvec.FromU64(1, 256))
	} else {
		// Only fully concrete operands and a concrete zero exponent are
		// evaluated; any other EXP with a symbolic operand ends the path as
		// NotConcrete.
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("EXP with symbolic exponent"))
	}
	s.PC++
	return nil, nil
}

func opSignExtend(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	b, x, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !b.IsConcrete() {
		s.Stack.Push(x)
		s.PC++
		return nil, nil
	}
	bv := b.AsBigInt()
	if bv.Cmp(big.NewInt(31)) >= 0 {
		s.Stack.Push(x)
	} else {
		byteIdx := uint(bv.Uint64())
		signBitPos := byteIdx*8 + 7
		if x.IsConcrete() {
			v := x.AsBigInt()
			if v.Bit(int(signBitPos)) == 1 {
				mask := new(big.Int).Lsh(big.NewInt(1), 256-signBitPos-1)
				mask.Sub(mask, big.NewInt(1))
				mask.Lsh(mask, signBitPos+1)
				v = new(big.Int).Or(v, mask)
			} else {
				mask := new(big.Int).Lsh(big.NewInt(1), signBitPos+1)
				mask.Sub(mask, big.NewInt(1))
				v = new(big.Int).And(v, mask)
			}
			s.Stack.Push(bitvec.FromBigInt(v, 256))
		} else {
			lowBits := bitvec.Extract(signBitPos, 0, x)
			s.Stack.Push(bitvec.SignExtend(256, lowBits))
		}
	}
	s.PC++
	return nil, nil
}

func opIszero(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	a, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(widen(bitvec.Eq(a, bitvec.FromU64(0, a.Width()))))
	s.PC++
	return nil, nil
}

func opNot(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	a, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(bitvec.Not(a))
	s.PC++
	return nil, nil
}

func opByte(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	i, x, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if i.IsConcrete() && i.AsBigInt().Cmp(big.NewInt(32)) >= 0 {
		s.Stack.Push(bitvec.FromU64(0, 256))
	} else if i.IsConcrete() {
		idx := uint(i.AsBigInt().Uint64())
		hi := 255 - idx*8
		lo := hi - 7
		s.Stack.Push(widen(bitvec.Extract(hi, lo, x)))
	} else {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("BYTE index"))
	}
	s.PC++
	return nil, nil
}

func opShl(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	shift, v, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(bitvec.Shl(v, shift))
	s.PC++
	return nil, nil
}

func opShr(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	shift, v, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(bitvec.Shr(v, shift))
	s.PC++
	return nil, nil
}

func opSar(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	shift, v, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(bitvec.Sar(v, shift))
	s.PC++
	return nil, nil
}

// opSha3 reads a memory slice and hashes it, registering the pairing in
// the keccak registry whether the slice is concrete or symbolic.
func opSha3(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	offset, length, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !offset.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("SHA3 offset/length"))
	}
	off := offset.AsBigInt().Uint64()
	ln := length.AsBigInt().Uint64()
	if err := expandMemory(s, off, ln); err != nil {
		return halt(s, err)
	}
	slice := s.Memory.Slice(off, ln)
	if bytes, ok := slice.ConcreteBytes(); ok {
		h := concreteKeccak(bytes)
		expr := sha3ExprFor(slice, ln)
		s.Keccak.Register(expr, h[:])
		s.Stack.Push(bitvec.FromBigInt(new(big.Int).SetBytes(h[:]), 256))
	} else {
		expr := sha3ExprFor(slice, ln)
		s.Keccak.Register(expr, nil)
		s.Stack.Push(bitvec.FromExpr(expr))
	}
	s.PC++
	return nil, nil
}

func opAddress(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(addrToBV(s.Frame.Callee))
	s.PC++
	return nil, nil
}

func opBalance(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	addr, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !addr.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("BALANCE address"))
	}
	a := bvToAddr(addr)
	s.Stack.Push(s.World.Get(a).Balance)
	s.PC++
	return nil, nil
}

func opOrigin(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(addrToBV(s.Frame.Caller))
	s.PC++
	return nil, nil
}

func opCaller(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(addrToBV(s.Frame.Caller))
	s.PC++
	return nil, nil
}

func opCallValue(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Frame.Value)
	s.PC++
	return nil, nil
}

func opCalldataLoad(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("CALLDATALOAD offset"))
	}
	s.Stack.Push(s.Calldata.ReadWord(off.AsBigInt().Uint64()))
	s.PC++
	return nil, nil
}

func opCalldataSize(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(uint64(s.Calldata.Len()), 256))
	s.PC++
	return nil, nil
}

func opCalldataCopy(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return memCopy3(s, s.Calldata)
}

func opCodeSize(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(uint64(s.Code.Len()), 256))
	s.PC++
	return nil, nil
}

func opCodeCopy(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return memCopy3(s, s.Code)
}

func memCopy3(s *state.ExecutionState, src bytevec.ByteVec) (*state.ExecutionState, error) {
	destOff, ok1 := s.Stack.Pop()
	srcOff, ok2 := s.Stack.Pop()
	length, ok3 := s.Stack.Pop()
	if !ok1 || !ok2 || !ok3 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !destOff.IsConcrete() || !srcOff.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("*COPY offsets"))
	}
	d := destOff.AsBigInt().Uint64()
	so := srcOff.AsBigInt().Uint64()
	ln := length.AsBigInt().Uint64()
	if err := expandMemory(s, d, ln); err != nil {
		return halt(s, err)
	}
	chunk := src.Slice(so, ln)
	s.Memory = writeBytes(s.Memory, d, chunk)
	s.PC++
	return nil, nil
}

func writeBytes(mem bytevec.ByteVec, offset uint64, data bytevec.ByteVec) bytevec.ByteVec {
	n := uint64(data.Len())
	i := uint64(0)
	for i+32 <= n {
		mem = mem.WriteWord(offset+i, data.ReadWord(i))
		i += 32
	}
	for ; i < n; i++ {
		mem = mem.WriteByte(offset+i, bitvec.Extract(255, 248, data.ReadWord(i)))
	}
	return mem
}

func opGasprice(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(0, 256))
	s.PC++
	return nil, nil
}

func opExtCodeSize(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	addr, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !addr.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("EXTCODESIZE address"))
	}
	s.Stack.Push(bitvec.FromU64(uint64(s.World.Get(bvToAddr(addr)).Code.Len()), 256))
	s.PC++
	return nil, nil
}

func opExtCodeCopy(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	addr, ok0 := s.Stack.Pop()
	destOff, ok1 := s.Stack.Pop()
	srcOff, ok2 := s.Stack.Pop()
	length, ok3 := s.Stack.Pop()
	if !ok0 || !ok1 || !ok2 || !ok3 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !addr.IsConcrete() || !destOff.IsConcrete() || !srcOff.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("EXTCODECOPY operands"))
	}
	code := s.World.Get(bvToAddr(addr)).Code
	d := destOff.AsBigInt().Uint64()
	so := srcOff.AsBigInt().Uint64()
	ln := length.AsBigInt().Uint64()
	if err := expandMemory(s, d, ln); err != nil {
		return halt(s, err)
	}
	s.Memory = writeBytes(s.Memory, d, code.Slice(so, ln))
	s.PC++
	return nil, nil
}

func opReturnDataSize(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(uint64(s.ReturnData.Len()), 256))
	s.PC++
	return nil, nil
}

func opReturnDataCopy(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	destOff, ok1 := s.Stack.Pop()
	srcOff, ok2 := s.Stack.Pop()
	length, ok3 := s.Stack.Pop()
	if !ok1 || !ok2 || !ok3 {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !destOff.IsConcrete() || !srcOff.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("RETURNDATACOPY offsets"))
	}
	so := srcOff.AsBigInt().Uint64()
	ln := length.AsBigInt().Uint64()
	if so+ln > uint64(s.ReturnData.Len()) {
		return halt(s, evmerrors.Simple(evmerrors.ReturnDataOutOfBounds))
	}
	d := destOff.AsBigInt().Uint64()
	if err := expandMemory(s, d, ln); err != nil {
		return halt(s, err)
	}
	s.Memory = writeBytes(s.Memory, d, s.ReturnData.Slice(so, ln))
	s.PC++
	return nil, nil
}

func opExtCodeHash(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	addr, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !addr.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("EXTCODEHASH address"))
	}
	a := bvToAddr(addr)
	if !s.World.Exists(a) {
		s.Stack.Push(bitvec.FromU64(0, 256))
		s.PC++
		return nil, nil
	}
	acc := s.World.Get(a)
	if acc.Code.Len() == 0 {
		s.Stack.Push(emptyKeccakBV())
		s.PC++
		return nil, nil
	}
	code, _ := acc.Code.ConcreteBytes()
	h := concreteKeccak(code)
	s.Stack.Push(bitvec.FromBigInt(new(big.Int).SetBytes(h[:]), 256))
	s.PC++
	return nil, nil
}

func opBlockhash(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	if _, ok := s.Stack.Pop(); !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.Stack.Push(bitvec.FromU64(0, 256))
	s.PC++
	return nil, nil
}

func opCoinbase(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.ZeroExtend(256, s.Block.Coinbase))
	s.PC++
	return nil, nil
}
func opTimestamp(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.Timestamp)
	s.PC++
	return nil, nil
}
func opNumber(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.Number)
	s.PC++
	return nil, nil
}
func opDifficulty(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.Difficulty)
	s.PC++
	return nil, nil
}
func opGasLimit(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.GasLimit)
	s.PC++
	return nil, nil
}
func opChainID(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.ChainID)
	s.PC++
	return nil, nil
}
func opSelfBalance(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.World.Get(s.Frame.Callee).Balance)
	s.PC++
	return nil, nil
}
func opBaseFee(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(s.Block.BaseFee)
	s.PC++
	return nil, nil
}

func opPop(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	if _, ok := s.Stack.Pop(); !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	s.PC++
	return nil, nil
}

func opMload(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("MLOAD offset"))
	}
	o := off.AsBigInt().Uint64()
	if err := expandMemory(s, o, 32); err != nil {
		return halt(s, err)
	}
	s.Stack.Push(s.Memory.ReadWord(o))
	s.PC++
	return nil, nil
}

func opMstore(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, val, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("MSTORE offset"))
	}
	o := off.AsBigInt().Uint64()
	if err := expandMemory(s, o, 32); err != nil {
		return halt(s, err)
	}
	s.Memory = s.Memory.WriteWord(o, val)
	s.PC++
	return nil, nil
}

func opMstore8(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, val, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("MSTORE8 offset"))
	}
	o := off.AsBigInt().Uint64()
	if err := expandMemory(s, o, 1); err != nil {
		return halt(s, err)
	}
	s.Memory = s.Memory.WriteByte(o, val)
	s.PC++
	return nil, nil
}

func opSload(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	key, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	acc := s.World.Get(s.Frame.Callee)
	s.Stack.Push(acc.Storage.Load(key))
	s.PC++
	return nil, nil
}

func opSstore(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	if s.Frame.IsStatic {
		return halt(s, evmerrors.Simple(evmerrors.WriteInStaticContext))
	}
	key, val, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	acc := s.World.Get(s.Frame.Callee).Clone()
	acc.Storage = acc.Storage.Store(key, val)
	s.World.Set(acc)
	s.PC++
	return nil, nil
}

func opJump(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	dest, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !dest.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("JUMP destination"))
	}
	d := dest.AsBigInt().Uint64()
	if !isJumpdest(s.Code, d) {
		return halt(s, evmerrors.NewInvalidJumpDest(d))
	}
	s.PC = d
	return nil, nil
}

// opJumpi is the only genuinely forking opcode the base instruction set
// exposes: a symbolic condition queries the solver both ways and, when
// both arms are feasible, pushes the else-branch and continues with the
// then-branch, so counterexamples on the taken side surface first.
func opJumpi(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	dest, cond, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !dest.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("JUMPI destination"))
	}
	d := dest.AsBigInt().Uint64()

	if cond.IsConcrete() {
		if !cond.IsZero() {
			if !isJumpdest(s.Code, d) {
				return halt(s, evmerrors.NewInvalidJumpDest(d))
			}
			if dropped := checkLoopBound(s, d, env); dropped {
				return nil, nil
			}
			s.PC = d
		} else {
			s.PC++
		}
		return nil, nil
	}

	condExpr := boolExprOf(cond)
	notCondExpr := negateBool(cond)

	thenSat, elseSat := branchFeasibility(s, env, condExpr, notCondExpr)
	if thenSat && !isJumpdest(s.Code, d) {
		// The taken side lands off a JUMPDEST; only the not-taken side can
		// actually be explored.
		thenSat = false
	}

	if !thenSat && !elseSat {
		return drop(s, state.DroppedInfeasible, evmerrors.NewInfeasiblePath("both JUMPI arms unsat"))
	}

	if elseSat {
		elseState := s.Fork()
		elseState.AddCond(notCondExpr)
		elseState.PC++
		if thenSat {
			env.Push(elseState)
		} else {
			// Only the else arm is feasible: continue with it directly.
			*s = *elseState
			return nil, nil
		}
	}

	// Continue with the then-branch (tie-break: then-before-else).
	if !isJumpdest(s.Code, d) {
		return halt(s, evmerrors.NewInvalidJumpDest(d))
	}
	if dropped := checkLoopBound(s, d, env); dropped {
		return nil, nil
	}
	s.AddCond(condExpr)
	s.PC = d
	return nil, nil
}

func opPc(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(s.PC, 256))
	s.PC++
	return nil, nil
}

func opMsize(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(uint64(s.Memory.Len()), 256))
	s.PC++
	return nil, nil
}

func opGas(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.Stack.Push(bitvec.FromU64(s.GasRemaining, 256))
	s.PC++
	return nil, nil
}

func opJumpdest(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	s.PC++
	return nil, nil
}

func makePush(n int) execFunc {
	return func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
		data := s.Code.Slice(s.PC+1, uint64(n))
		bs, _ := data.ConcreteBytes() // code is always concrete
		s.Stack.Push(bitvec.FromBigInt(new(big.Int).SetBytes(bs), 256))
		s.PC += uint64(n) + 1
		return nil, nil
	}
}

func makeDup(depth int) execFunc {
	return func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
		v, ok := s.Stack.Peek(depth - 1)
		if !ok {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		s.Stack.Push(v)
		s.PC++
		return nil, nil
	}
}

func makeSwap(depth int) execFunc {
	return func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
		if !s.Stack.Swap(depth) {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		s.PC++
		return nil, nil
	}
}

// makeLog pops offset/length plus `topics` indexed topics and discards
// them: this engine doesn't model event-log output as part of a verdict,
// but still validates stack shape and advances pc faithfully.
func makeLog(topics int) execFunc {
	return func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
		if s.Frame.IsStatic {
			return halt(s, evmerrors.Simple(evmerrors.WriteInStaticContext))
		}
		off, length, ok := popPair(s)
		if !ok {
			return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
		}
		for i := 0; i < topics; i++ {
			if _, ok := s.Stack.Pop(); !ok {
				return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
			}
		}
		if off.IsConcrete() && length.IsConcrete() {
			o, l := off.AsBigInt().Uint64(), length.AsBigInt().Uint64()
			if err := expandMemory(s, o, l); err != nil {
				return halt(s, err)
			}
		}
		s.PC++
		return nil, nil
	}
}

func opRevert(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, length, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("REVERT offset/length"))
	}
	o, l := off.AsBigInt().Uint64(), length.AsBigInt().Uint64()
	if err := expandMemory(s, o, l); err != nil {
		return halt(s, err)
	}
	return revert(s, s.Memory.Slice(o, l))
}

func opReturn(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	off, length, ok := popPair(s)
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !off.IsConcrete() || !length.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("RETURN offset/length"))
	}
	o, l := off.AsBigInt().Uint64(), length.AsBigInt().Uint64()
	if err := expandMemory(s, o, l); err != nil {
		return halt(s, err)
	}
	s.Term = state.Terminal{Kind: state.TerminalSuccess, ReturnData: s.Memory.Slice(o, l)}
	return nil, nil
}

func opInvalid(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	return halt(s, evmerrors.NewInvalidOpcode(byte(INVALID)))
}

func opSelfdestruct(s *state.ExecutionState, env *Env) (*state.ExecutionState, error) {
	if s.Frame.IsStatic {
		return halt(s, evmerrors.Simple(evmerrors.WriteInStaticContext))
	}
	target, ok := s.Stack.Pop()
	if !ok {
		return halt(s, evmerrors.Simple(evmerrors.StackUnderflow))
	}
	if !target.IsConcrete() {
		return drop(s, state.DroppedInfeasible, evmerrors.NewNotConcrete("SELFDESTRUCT target"))
	}
	self := s.World.Get(s.Frame.Callee)
	dest := s.World.Get(bvToAddr(target)).Clone()
	dest.Balance = bitvec.Add(dest.Balance, self.Balance)
	s.World.Set(dest)
	selfClone := self.Clone()
	selfClone.Balance = bitvec.FromU64(0, 256)
	selfClone.Destroyed = true
	s.World.Set(selfClone)
	s.Term = state.Terminal{Kind: state.TerminalSuccess, ReturnData: bytevec.Empty()}
	return nil, nil
}

// SPDX-License-Identifier: AGPL-3.0

package interpreter

import "github.com/web-ghost-dotcom/cbse/internal/state"

// execFunc is the transition function for one opcode: it mutates s in
// place (pc, stack, memory, ...). A non-nil returned *state.ExecutionState
// is an additional successor to push onto the worklist (a fork); s itself
// continues as the "then"/primary branch. A non-nil error
// is an engine-global failure; path-local outcomes (Halt, Revert, Dropped)
// are instead recorded directly on s.Term and s is left non-Running.
type execFunc func(s *state.ExecutionState, env *Env) (*state.ExecutionState, error)

// operation describes one dispatch-table entry: the transition function
// plus its static stack-shape bounds. Gas is modeled only for memory
// expansion, so there is no per-opcode cost column here.
type operation struct {
	execute  execFunc
	minStack int
	maxStack int
	valid    bool
}

// JumpTable is the flat opcode byte -> operation dispatch table.
type JumpTable [256]operation

var defaultJumpTable = newJumpTable()

func minStack(pops int) int { return pops }

// maxStack is the largest stack depth an opcode may start from without its
// net growth (pushes - pops) overflowing the 1024 limit.
func maxStack(pops, pushes int) int {
	return state.MaxStackDepth + pops - pushes
}

func newJumpTable() JumpTable {
	var t JumpTable

	set := func(op OpCode, fn execFunc, pops, pushes int, valid bool) {
		t[op] = operation{execute: fn, minStack: minStack(pops), maxStack: maxStack(pops, pushes), valid: valid}
	}

	set(STOP, opStop, 0, 0, true)
	set(ADD, opBin(binAdd), 2, 1, true)
	set(MUL, opBin(binMul), 2, 1, true)
	set(SUB, opBin(binSub), 2, 1, true)
	set(DIV, opBin(binUdiv), 2, 1, true)
	set(SDIV, opBin(binSdiv), 2, 1, true)
	set(MOD, opBin(binUmod), 2, 1, true)
	set(SMOD, opBin(binSmod), 2, 1, true)
	set(ADDMOD, opAddmod, 3, 1, true)
	set(MULMOD, opMulmod, 3, 1, true)
	set(EXP, opExp, 2, 1, true)
	set(SIGNEXTEND, opSignExtend, 2, 1, true)

	set(LT, opBin(binUlt), 2, 1, true)
	set(GT, opBin(binUgt), 2, 1, true)
	set(SLT, opBin(binSlt), 2, 1, true)
	set(SGT, opBin(binSgt), 2, 1, true)
	set(EQ, opBin(binEq), 2, 1, true)
	set(ISZERO, opIszero, 1, 1, true)
	set(AND, opBin(binAnd), 2, 1, true)
	set(OR, opBin(binOr), 2, 1, true)
	set(XOR, opBin(binXor), 2, 1, true)
	set(NOT, opNot, 1, 1, true)
	set(BYTE, opByte, 2, 1, true)
	set(SHL, opShl, 2, 1, true)
	set(SHR, opShr, 2, 1, true)
	set(SAR, opSar, 2, 1, true)

	set(SHA3, opSha3, 2, 1, true)

	set(ADDRESS, opAddress, 0, 1, true)
	set(BALANCE, opBalance, 1, 1, true)
	set(ORIGIN, opOrigin, 0, 1, true)
	set(CALLER, opCaller, 0, 1, true)
	set(CALLVALUE, opCallValue, 0, 1, true)
	set(CALLDATALOAD, opCalldataLoad, 1, 1, true)
	set(CALLDATASIZE, opCalldataSize, 0, 1, true)
	set(CALLDATACOPY, opCalldataCopy, 3, 0, true)
	set(CODESIZE, opCodeSize, 0, 1, true)
	set(CODECOPY, opCodeCopy, 3, 0, true)
	set(GASPRICE, opGasprice, 0, 1, true)
	set(EXTCODESIZE, opExtCodeSize, 1, 1, true)
	set(EXTCODECOPY, opExtCodeCopy, 4, 0, true)
	set(RETURNDATASIZE, opReturnDataSize, 0, 1, true)
	set(RETURNDATACOPY, opReturnDataCopy, 3, 0, true)
	set(EXTCODEHASH, opExtCodeHash, 1, 1, true)

	set(BLOCKHASH, opBlockhash, 1, 1, true)
	set(COINBASE, opCoinbase, 0, 1, true)
	set(TIMESTAMP, opTimestamp, 0, 1, true)
	set(NUMBER, opNumber, 0, 1, true)
	set(DIFFICULTY, opDifficulty, 0, 1, true)
	set(GASLIMIT, opGasLimit, 0, 1, true)
	set(CHAINID, opChainID, 0, 1, true)
	set(SELFBALANCE, opSelfBalance, 0, 1, true)
	set(BASEFEE, opBaseFee, 0, 1, true)

	set(POP, opPop, 1, 0, true)
	set(MLOAD, opMload, 1, 1, true)
	set(MSTORE, opMstore, 2, 0, true)
	set(MSTORE8, opMstore8, 2, 0, true)
	set(SLOAD, opSload, 1, 1, true)
	set(SSTORE, opSstore, 2, 0, true)
	set(JUMP, opJump, 1, 0, true)
	set(JUMPI, opJumpi, 2, 0, true)
	set(PC, opPc, 0, 1, true)
	set(MSIZE, opMsize, 0, 1, true)
	set(GAS, opGas, 0, 1, true)
	set(JUMPDEST, opJumpdest, 0, 0, true)

	for op := PUSH1; op <= PUSH32; op++ {
		n := int(op-PUSH1) + 1
		set(op, makePush(n), 0, 1, true)
	}
	for op := DUP1; op <= DUP16; op++ {
		depth := int(op-DUP1) + 1
		set(op, makeDup(depth), depth, depth+1, true)
	}
	for op := SWAP1; op <= SWAP16; op++ {
		depth := int(op-SWAP1) + 1
		set(op, makeSwap(depth), depth+1, depth+1, true)
	}
	for op := LOG0; op <= LOG4; op++ {
		topics := int(op - LOG0)
		set(op, makeLog(topics), 2+topics, 0, true)
	}

	set(CREATE, opCreate, 3, 1, true)
	set(CALL, opCall, 7, 1, true)
	set(CALLCODE, opCallCode, 7, 1, true)
	set(RETURN, opReturn, 2, 0, true)
	set(DELEGATECALL, opDelegateCall, 6, 1, true)
	set(CREATE2, opCreate2, 4, 1, true)
	set(STATICCALL, opStaticCall, 6, 1, true)
	set(REVERT, opRevert, 2, 0, true)
	set(INVALID, opInvalid, 0, 0, true)
	set(SELFDESTRUCT, opSelfdestruct, 1, 0, true)

	return t
}

// SPDX-License-Identifier: AGPL-3.0

package state

import (
	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/keccak"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

const (
	// MaxStackDepth is the EVM stack depth limit.
	MaxStackDepth = 1024
	// MaxCallDepth is the EVM message-call depth limit.
	MaxCallDepth = 1024
	// MaxMemorySize caps ByteVec-backed memory.
	MaxMemorySize = 1 << 20
)

// Stack is a bounded LIFO of 256-bit BVs.
type Stack struct {
	items []bitvec.BV
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Len reports the current stack depth.
func (s *Stack) Len() int { return len(s.items) }

// Push adds v to the top of the stack.
func (s *Stack) Push(v bitvec.BV) { s.items = append(s.items, v) }

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() (bitvec.BV, bool) {
	if len(s.items) == 0 {
		return bitvec.BV{}, false
	}
	n := len(s.items) - 1
	v := s.items[n]
	s.items = s.items[:n]
	return v, true
}

// Peek returns the item at depth (0 = top) without removing it.
func (s *Stack) Peek(depth int) (bitvec.BV, bool) {
	idx := len(s.items) - 1 - depth
	if idx < 0 || idx >= len(s.items) {
		return bitvec.BV{}, false
	}
	return s.items[idx], true
}

// Swap exchanges the top item with the item at depth.
func (s *Stack) Swap(depth int) bool {
	idx := len(s.items) - 1 - depth
	if idx < 0 || idx >= len(s.items) {
		return false
	}
	top := len(s.items) - 1
	s.items[top], s.items[idx] = s.items[idx], s.items[top]
	return true
}

// Clone returns an independent copy; stacks are small enough that a full
// copy is cheap, unlike memory and storage which stay persistent.
func (s *Stack) Clone() *Stack {
	cp := make([]bitvec.BV, len(s.items))
	copy(cp, s.items)
	return &Stack{items: cp}
}

// CallFrame carries the per-call-depth context: caller/callee/value/static.
type CallFrame struct {
	Caller   Address160
	Callee   Address160
	Value    bitvec.BV
	IsStatic bool
}

// BlockCtx carries the symbolic/concrete block-context values exposed by
// COINBASE/TIMESTAMP/NUMBER/DIFFICULTY/GASLIMIT/CHAINID/BASEFEE and mutated
// in place by the warp/roll/fee/chainId cheatcodes. It lives on
// the path (ExecutionState), not a shared Env, since a cheatcode's effect is
// a per-path side effect like any other state write.
type BlockCtx struct {
	Coinbase   bitvec.BV
	Timestamp  bitvec.BV
	Number     bitvec.BV
	Difficulty bitvec.BV
	GasLimit   bitvec.BV
	ChainID    bitvec.BV
	BaseFee    bitvec.BV
}

// DefaultBlockCtx returns the engine's default concrete block context.
func DefaultBlockCtx() BlockCtx {
	return BlockCtx{
		Coinbase:   bitvec.FromU64(0, 160),
		Timestamp:  bitvec.FromU64(1, 256),
		Number:     bitvec.FromU64(1, 256),
		Difficulty: bitvec.FromU64(0, 256),
		GasLimit:   bitvec.FromU64(30_000_000, 256),
		ChainID:    bitvec.FromU64(1, 256),
		BaseFee:    bitvec.FromU64(0, 256),
	}
}

func (b BlockCtx) clone() BlockCtx { return b }

// TerminalKind classifies why a state stopped being Running.
type TerminalKind int

const (
	NotTerminal TerminalKind = iota
	TerminalSuccess
	TerminalRevert
	TerminalHalt
	DroppedLoopBound
	DroppedInfeasible
	DroppedTimeout
)

// Terminal holds the outcome payload once a state stops.
type Terminal struct {
	Kind       TerminalKind
	ReturnData bytevec.ByteVec
	Err        error // set for TerminalHalt / Dropped*
}

// ExecutionState is a single symbolic-execution path: pc, stack, memory,
// calldata, returndata, world view, path condition, gas, call-frame
// context, and a pointer to the keccak registry.
type ExecutionState struct {
	PC uint64

	// Code is the currently executing contract's immutable bytecode.
	Code     bytevec.ByteVec
	Stack    *Stack
	Memory   bytevec.ByteVec
	Calldata bytevec.ByteVec

	ReturnData bytevec.ByteVec

	World *World

	// PathCond is the ordered conjunction of boolean expressions taken to
	// reach this state; order is preserved for deterministic solver
	// queries.
	PathCond []*symir.Expr

	GasRemaining uint64
	Depth        int

	Frame CallFrame
	Block BlockCtx

	Keccak *keccak.Registry

	// JumpdestVisits counts per-pc visits along back-edges, for the loop
	// bound.
	JumpdestVisits map[uint64]int

	// FreshVarSeq numbers successive createUint/createBool/... cheatcode
	// calls and unnamed environment inputs so their symbolic names are
	// unique yet deterministic given the same exploration order.
	FreshVarSeq int

	// PrankActive/PrankSender/PrankPersistent mirror Foundry's
	// prank/startPrank: when PrankActive, the next (or, if
	// PrankPersistent, every) sub-call this frame makes reports
	// PrankSender as msg.sender instead of this frame's own address.
	PrankActive     bool
	PrankSender     Address160
	PrankPersistent bool

	Term Terminal
}

// NextFreshVar returns a unique, deterministic variable name rooted at
// label and advances the per-state sequence counter.
func (s *ExecutionState) NextFreshVar(label string) string {
	n := s.FreshVarSeq
	s.FreshVarSeq++
	return label + "_" + itoaSeq(n)
}

func itoaSeq(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// New builds the initial Running state at pc=0.
func New(world *World, calldata bytevec.ByteVec, frame CallFrame, gas uint64, reg *keccak.Registry) *ExecutionState {
	return &ExecutionState{
		Stack:          NewStack(),
		Memory:         bytevec.Empty(),
		Calldata:       calldata,
		ReturnData:     bytevec.Empty(),
		World:          world,
		GasRemaining:   gas,
		Frame:          frame,
		Block:          DefaultBlockCtx(),
		Keccak:         reg,
		JumpdestVisits: map[uint64]int{},
	}
}

// IsTerminal reports whether this state has stopped.
func (s *ExecutionState) IsTerminal() bool { return s.Term.Kind != NotTerminal }

// Fork produces a structurally independent successor state: stack and
// memory are copied (cheap — bytevec is persistent, stack is small), world
// is a copy-on-write snapshot, and the keccak registry is copied in full.
func (s *ExecutionState) Fork() *ExecutionState {
	cp := &ExecutionState{
		PC:              s.PC,
		Stack:           s.Stack.Clone(),
		Memory:          s.Memory,
		Calldata:        s.Calldata,
		ReturnData:      s.ReturnData,
		World:           s.World.Snapshot(),
		PathCond:        append([]*symir.Expr(nil), s.PathCond...),
		GasRemaining:    s.GasRemaining,
		Depth:           s.Depth,
		Frame:           s.Frame,
		Block:           s.Block.clone(),
		Keccak:          s.Keccak.Copy(),
		JumpdestVisits:  cloneVisits(s.JumpdestVisits),
		FreshVarSeq:     s.FreshVarSeq,
		PrankActive:     s.PrankActive,
		PrankSender:     s.PrankSender,
		PrankPersistent: s.PrankPersistent,
	}
	return cp
}

func cloneVisits(m map[uint64]int) map[uint64]int {
	out := make(map[uint64]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AddCond appends a boolean predicate to the path condition, preserving
// order for deterministic solver queries.
func (s *ExecutionState) AddCond(cond *symir.Expr) {
	s.PathCond = append(s.PathCond, cond)
}

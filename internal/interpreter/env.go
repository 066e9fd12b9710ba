// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"github.com/web-ghost-dotcom/cbse/internal/cheatcode"
	"github.com/web-ghost-dotcom/cbse/internal/config"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// Env is the interpreter-wide context shared by every opcode transition: the
// solver façade, the engine configuration, the cheatcode dispatcher, and a
// callback to push a forked state onto the driving worklist. Per-path data
// (pc, stack, memory, ...) lives on *state.ExecutionState instead, never
// here, so Env can be shared across every state a worker drives — one
// solver instance per worker, not per state.
type Env struct {
	Solver *solver.Solver
	Config config.ExecutionConfig
	Cheat  *cheatcode.Dispatcher

	// Push enqueues a forked successor state onto the caller's worklist.
	// Both top-level JUMPI forks and the extra leaves a CALL's callee
	// control flow produces go through this one callback.
	Push func(*state.ExecutionState)

	// CodeByAddress resolves a deployed account's runtime code for CALL/
	// STATICCALL/DELEGATECALL/CALLCODE targets outside the precompile and
	// cheatcode ranges. Returns ok=false for accounts with no code (a
	// plain value transfer) or an address the artifact never described.
	CodeByAddress func(addr state.Address160) (code []byte, ok bool)
}

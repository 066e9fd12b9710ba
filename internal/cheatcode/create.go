// SPDX-License-Identifier: AGPL-3.0

package cheatcode

import (
	"math/big"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// The create* cheatcodes mint fresh symbolic values, the halmos svm.*
// family: the caller names the value and (for sized kinds) its bit/byte
// width, and the engine returns an unconstrained variable of exactly that
// width. Width bounds are enforced by construction — a createUint(8, ...)
// result is an 8-bit variable zero-extended to the 256-bit stack word, so
// no extra path-condition range assertion is needed.

var bigInt256 = big.NewInt(256)

// freshVar mints a deterministic per-path variable. The user-facing label
// is suffixed with the state's sequence counter so two calls with the same
// label stay distinct inputs in the model.
func freshVar(s *state.ExecutionState, label string, width uint) bitvec.BV {
	return bitvec.FromExpr(symir.NewVar(s.NextFreshVar(label), width))
}

func decodeCreateName(args []byte, i int) string {
	name := string(decodeDynamic(args, i))
	if name == "" {
		name = "halmos_anon"
	}
	return name
}

func cheatCreateUint(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	bits := decodeUint256(args, 0)
	if bits.Sign() <= 0 || bits.Cmp(bigInt256) > 0 {
		return bytevec.Empty(), evmerrors.NewInvalidParameter("createUint: bit size must be in 1..256")
	}
	v := freshVar(s, decodeCreateName(args, 1), uint(bits.Uint64()))
	return bytevec.FromBV(bitvec.ZeroExtend(256, v)), nil
}

func cheatCreateInt(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	bits := decodeUint256(args, 0)
	if bits.Sign() <= 0 || bits.Cmp(bigInt256) > 0 {
		return bytevec.Empty(), evmerrors.NewInvalidParameter("createInt: bit size must be in 1..256")
	}
	v := freshVar(s, decodeCreateName(args, 1), uint(bits.Uint64()))
	return bytevec.FromBV(bitvec.SignExtend(256, v)), nil
}

func cheatCreateAddress(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	v := freshVar(s, decodeCreateName(args, 0), 160)
	return bytevec.FromBV(bitvec.ZeroExtend(256, v)), nil
}

func cheatCreateBool(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	v := freshVar(s, decodeCreateName(args, 0), 1)
	return bytevec.FromBV(bitvec.ZeroExtend(256, v)), nil
}

func cheatCreateBytes32(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	v := freshVar(s, decodeCreateName(args, 0), 256)
	return bytevec.FromBV(v), nil
}

// createBytes4 returns a fixed bytes4: the 4 symbolic bytes sit at the
// high end of the word, right-padded with zeros per the fixed-bytes ABI
// convention.
func cheatCreateBytes4(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	v := freshVar(s, decodeCreateName(args, 0), 32)
	return bytevec.Concat(bytevec.FromBV(v), bytevec.FromBytes(make([]byte, 28))), nil
}

func cheatCreateBytes(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return createDynamic(s, args, "createBytes")
}

func cheatCreateString(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return createDynamic(s, args, "createString")
}

// createDynamic returns an ABI-encoded dynamic bytes/string whose length is
// concrete (the requested byte size) and whose payload is symbolic.
func createDynamic(s *state.ExecutionState, args []byte, what string) (bytevec.ByteVec, error) {
	size := decodeUint256(args, 0)
	if size.Sign() < 0 || !size.IsUint64() || size.Uint64() > state.MaxMemorySize {
		return bytevec.Empty(), evmerrors.NewInvalidParameter(what + ": unreasonable byte size")
	}
	n := size.Uint64()
	head := make([]byte, 64)
	head[31] = 32
	head[63] = byte(n)
	head[62] = byte(n >> 8)
	head[61] = byte(n >> 16)
	out := bytevec.FromBytes(head)
	if n > 0 {
		payload := freshVar(s, decodeCreateName(args, 1), uint(n)*8)
		out = bytevec.Concat(out, bytevec.FromBV(payload))
		if pad := (32 - n%32) % 32; pad > 0 {
			out = bytevec.Concat(out, bytevec.FromBytes(make([]byte, pad)))
		}
	}
	return out, nil
}

// Copyright 2014 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

// Package bitvec implements the fixed-width two's-complement bitvector (BV)
// that backs every stack slot, storage key/value and calldata word in the
// symbolic interpreter. A BV is either concrete or symbolic (backed by a
// symir.Expr). Concrete-concrete operations fold immediately; any symbolic
// operand promotes the result to symbolic. 256-bit concrete folds go
// through holiman/uint256, whose arithmetic wraps modulo 2^256 natively
// and treats division by zero as zero, both exactly the EVM semantics;
// other widths (the 512-bit ADDMOD/MULMOD intermediates, sub-word
// extracts) fall back to math/big with an explicit mask.
package bitvec

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// BV is a fixed-width value, concrete or symbolic. The zero value is not
// valid; use From* constructors.
type BV struct {
	width uint
	conc  *big.Int    // nil iff symbolic
	sym   *symir.Expr // nil iff concrete
}

// Width returns the bit width of the value.
func (b BV) Width() uint { return b.width }

// IsConcrete reports whether the value has no symbolic component.
func (b BV) IsConcrete() bool { return b.conc != nil }

// AsBigInt returns the concrete value, panicking if symbolic. Callers that
// need graceful handling should check IsConcrete first.
func (b BV) AsBigInt() *big.Int {
	if b.conc == nil {
		panic("bitvec: AsBigInt on symbolic value")
	}
	return new(big.Int).Set(b.conc)
}

// Expr returns the symbolic expression, panicking if concrete.
func (b BV) Expr() *symir.Expr {
	if b.sym == nil {
		panic("bitvec: Expr on concrete value")
	}
	return b.sym
}

func mask(v *big.Int, width uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), width)
	r := new(big.Int).Mod(v, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r
}

// FromBigInt builds a concrete BV, wrapping modulo 2^width.
func FromBigInt(v *big.Int, width uint) BV {
	return BV{width: width, conc: mask(v, width)}
}

// FromU64 builds a concrete BV from a u64 value.
func FromU64(value uint64, width uint) BV {
	return FromBigInt(new(big.Int).SetUint64(value), width)
}

// FromExpr builds a symbolic BV.
func FromExpr(e *symir.Expr) BV {
	return BV{width: e.Width, sym: e}
}

func (b BV) expr() *symir.Expr {
	if b.sym != nil {
		return b.sym
	}
	return symir.NewConst(b.conc, b.width)
}

// u256Fold folds the common case — both operands concrete and 256 bits
// wide — on uint256.Int, which wraps modulo 2^256 without the explicit
// mask the big.Int path needs. fn is a three-address uint256 method value
// like (*uint256.Int).Add.
func u256Fold(a, b BV, fn func(z, x, y *uint256.Int) *uint256.Int) (BV, bool) {
	if a.width != 256 || b.width != 256 || !a.IsConcrete() || !b.IsConcrete() {
		return BV{}, false
	}
	x, _ := uint256.FromBig(a.conc)
	y, _ := uint256.FromBig(b.conc)
	z := fn(new(uint256.Int), x, y)
	return BV{width: 256, conc: z.ToBig()}, true
}

// binFold applies fn to concrete operands or builds a symbolic node.
func binFold(op symir.Op, width uint, a, b BV, fn func(x, y *big.Int) *big.Int) BV {
	if a.IsConcrete() && b.IsConcrete() {
		return FromBigInt(fn(a.conc, b.conc), width)
	}
	return FromExpr(symir.NewBin(op, width, a.expr(), b.expr()))
}

// Add computes (a + b) mod 2^width.
func Add(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Add); ok {
		return r
	}
	return binFold(symir.OpAdd, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
}

// Sub computes (a - b) mod 2^width.
func Sub(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Sub); ok {
		return r
	}
	return binFold(symir.OpSub, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

// Mul computes (a * b) mod 2^width.
func Mul(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Mul); ok {
		return r
	}
	return binFold(symir.OpMul, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

// Udiv computes unsigned a / b; division by zero yields zero (EVM semantics).
func Udiv(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Div); ok {
		return r
	}
	if a.IsConcrete() && b.IsConcrete() {
		if b.conc.Sign() == 0 {
			return FromU64(0, a.width)
		}
		return FromBigInt(new(big.Int).Div(a.conc, b.conc), a.width)
	}
	divExpr := symir.NewBin(symir.OpUdiv, a.width, a.expr(), b.expr())
	isZero := symir.NewCmp(symir.OpEq, b.expr(), symir.NewConst(big.NewInt(0), a.width))
	return FromExpr(symir.NewIte(isZero, symir.NewConst(big.NewInt(0), a.width), divExpr))
}

func toSigned(v *big.Int, width uint) *big.Int {
	signBit := new(big.Int).Lsh(big.NewInt(1), width-1)
	if v.Cmp(signBit) < 0 {
		return new(big.Int).Set(v)
	}
	full := new(big.Int).Lsh(big.NewInt(1), width)
	return new(big.Int).Sub(v, full)
}

// Sdiv computes signed a / b; division by zero yields zero.
func Sdiv(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).SDiv); ok {
		return r
	}
	if a.IsConcrete() && b.IsConcrete() {
		if b.conc.Sign() == 0 {
			return FromU64(0, a.width)
		}
		sa, sb := toSigned(a.conc, a.width), toSigned(b.conc, a.width)
		q := new(big.Int).Quo(sa, sb)
		return FromBigInt(q, a.width)
	}
	divExpr := symir.NewBin(symir.OpSdiv, a.width, a.expr(), b.expr())
	isZero := symir.NewCmp(symir.OpEq, b.expr(), symir.NewConst(big.NewInt(0), a.width))
	return FromExpr(symir.NewIte(isZero, symir.NewConst(big.NewInt(0), a.width), divExpr))
}

// Umod computes unsigned a % b; mod by zero yields zero.
func Umod(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Mod); ok {
		return r
	}
	if a.IsConcrete() && b.IsConcrete() {
		if b.conc.Sign() == 0 {
			return FromU64(0, a.width)
		}
		return FromBigInt(new(big.Int).Mod(a.conc, b.conc), a.width)
	}
	modExpr := symir.NewBin(symir.OpUmod, a.width, a.expr(), b.expr())
	isZero := symir.NewCmp(symir.OpEq, b.expr(), symir.NewConst(big.NewInt(0), a.width))
	return FromExpr(symir.NewIte(isZero, symir.NewConst(big.NewInt(0), a.width), modExpr))
}

// Smod computes signed a % b; mod by zero yields zero.
func Smod(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).SMod); ok {
		return r
	}
	if a.IsConcrete() && b.IsConcrete() {
		if b.conc.Sign() == 0 {
			return FromU64(0, a.width)
		}
		sa, sb := toSigned(a.conc, a.width), toSigned(b.conc, a.width)
		r := new(big.Int).Rem(sa, sb)
		return FromBigInt(r, a.width)
	}
	modExpr := symir.NewBin(symir.OpSmod, a.width, a.expr(), b.expr())
	isZero := symir.NewCmp(symir.OpEq, b.expr(), symir.NewConst(big.NewInt(0), a.width))
	return FromExpr(symir.NewIte(isZero, symir.NewConst(big.NewInt(0), a.width), modExpr))
}

// And computes bitwise a & b.
func And(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).And); ok {
		return r
	}
	return binFold(symir.OpAnd, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).And(x, y) })
}

// Or computes bitwise a | b.
func Or(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Or); ok {
		return r
	}
	return binFold(symir.OpOr, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Or(x, y) })
}

// Xor computes bitwise a ^ b.
func Xor(a, b BV) BV {
	if r, ok := u256Fold(a, b, (*uint256.Int).Xor); ok {
		return r
	}
	return binFold(symir.OpXor, a.width, a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Xor(x, y) })
}

// Not computes bitwise ^a.
func Not(a BV) BV {
	if a.IsConcrete() {
		full := new(big.Int).Lsh(big.NewInt(1), a.width)
		full.Sub(full, big.NewInt(1))
		return FromBigInt(new(big.Int).Xor(a.conc, full), a.width)
	}
	return FromExpr(symir.NewUn(symir.OpNot, a.width, a.expr()))
}

func shiftAmount(b BV, width uint) (uint, bool) {
	if !b.IsConcrete() {
		return 0, false
	}
	if b.conc.Cmp(big.NewInt(int64(width))) >= 0 {
		return width, true // caller treats as full shift-out
	}
	return uint(b.conc.Uint64()), true
}

// Shl computes a << shift (EVM SHL: shift amount first operand semantics are
// the caller's responsibility; here a is the value and b the shift amount).
func Shl(a, shiftAmt BV) BV {
	if a.IsConcrete() {
		if n, ok := shiftAmount(shiftAmt, a.width); ok {
			if n >= a.width {
				return FromU64(0, a.width)
			}
			return FromBigInt(new(big.Int).Lsh(a.conc, n), a.width)
		}
	}
	return FromExpr(symir.NewBin(symir.OpShl, a.width, a.expr(), shiftAmt.expr()))
}

// Shr computes logical a >> shift.
func Shr(a, shiftAmt BV) BV {
	if a.IsConcrete() {
		if n, ok := shiftAmount(shiftAmt, a.width); ok {
			if n >= a.width {
				return FromU64(0, a.width)
			}
			return FromBigInt(new(big.Int).Rsh(a.conc, n), a.width)
		}
	}
	return FromExpr(symir.NewBin(symir.OpShr, a.width, a.expr(), shiftAmt.expr()))
}

// Sar computes arithmetic (sign-extending) a >> shift.
func Sar(a, shiftAmt BV) BV {
	if a.IsConcrete() {
		if n, ok := shiftAmount(shiftAmt, a.width); ok {
			signed := toSigned(a.conc, a.width)
			if n >= a.width {
				if signed.Sign() < 0 {
					n = a.width - 1
				} else {
					return FromU64(0, a.width)
				}
			}
			return FromBigInt(new(big.Int).Rsh(signed, n), a.width)
		}
	}
	return FromExpr(symir.NewBin(symir.OpSar, a.width, a.expr(), shiftAmt.expr()))
}

// Eq returns a 1-bit BV: 1 if a == b else 0.
func Eq(a, b BV) BV {
	if a.IsConcrete() && b.IsConcrete() {
		if a.conc.Cmp(b.conc) == 0 {
			return FromU64(1, 1)
		}
		return FromU64(0, 1)
	}
	return FromExpr(symir.NewCmp(symir.OpEq, a.expr(), b.expr()))
}

// Ult returns a 1-bit BV: unsigned a < b.
func Ult(a, b BV) BV {
	if a.IsConcrete() && b.IsConcrete() {
		if a.conc.Cmp(b.conc) < 0 {
			return FromU64(1, 1)
		}
		return FromU64(0, 1)
	}
	return FromExpr(symir.NewCmp(symir.OpUlt, a.expr(), b.expr()))
}

// Slt returns a 1-bit BV: signed a < b.
func Slt(a, b BV) BV {
	if a.IsConcrete() && b.IsConcrete() {
		if toSigned(a.conc, a.width).Cmp(toSigned(b.conc, b.width)) < 0 {
			return FromU64(1, 1)
		}
		return FromU64(0, 1)
	}
	return FromExpr(symir.NewCmp(symir.OpSlt, a.expr(), b.expr()))
}

// Concat concatenates a (high bits) with b (low bits).
func Concat(a, b BV) BV {
	width := a.width + b.width
	if a.IsConcrete() && b.IsConcrete() {
		v := new(big.Int).Lsh(a.conc, b.width)
		v.Or(v, b.conc)
		return FromBigInt(v, width)
	}
	return FromExpr(symir.NewBin(symir.OpConcat, width, a.expr(), b.expr()))
}

// Extract returns bits [hi:lo] (inclusive, 0-indexed from LSB).
func Extract(hi, lo uint, a BV) BV {
	width := hi - lo + 1
	if a.IsConcrete() {
		v := new(big.Int).Rsh(a.conc, lo)
		return FromBigInt(v, width)
	}
	return FromExpr(symir.NewExtract(hi, lo, a.expr()))
}

// ZeroExtend widens a to newWidth, padding with zero bits.
func ZeroExtend(newWidth uint, a BV) BV {
	if a.width == newWidth {
		return a
	}
	if a.IsConcrete() {
		return FromBigInt(new(big.Int).Set(a.conc), newWidth)
	}
	return FromExpr(symir.NewCast(symir.OpZeroExt, newWidth, a.expr()))
}

// SignExtend widens a to newWidth, replicating the sign bit.
func SignExtend(newWidth uint, a BV) BV {
	if a.width == newWidth {
		return a
	}
	if a.IsConcrete() {
		return FromBigInt(toSigned(a.conc, a.width), newWidth)
	}
	return FromExpr(symir.NewCast(symir.OpSignExt, newWidth, a.expr()))
}

// Ite selects a if cond (a 1-bit BV) is nonzero, else b.
func Ite(cond, a, b BV) BV {
	if cond.IsConcrete() {
		if cond.conc.Sign() != 0 {
			return a
		}
		return b
	}
	return FromExpr(symir.NewIte(cond.expr(), a.expr(), b.expr()))
}

// IsZero reports whether a concrete value equals zero; only valid when
// IsConcrete() is true.
func (b BV) IsZero() bool { return b.conc != nil && b.conc.Sign() == 0 }

// Bytes32 renders a concrete value as a big-endian 32-byte array (zero
// padded / truncated to 32 bytes regardless of width).
func (b BV) Bytes32() [32]byte {
	var out [32]byte
	if b.conc == nil {
		return out
	}
	bs := b.conc.Bytes()
	if len(bs) > 32 {
		bs = bs[len(bs)-32:]
	}
	copy(out[32-len(bs):], bs)
	return out
}

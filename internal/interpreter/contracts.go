// SPDX-License-Identifier: AGPL-3.0

package interpreter

import (
	"crypto/sha256"
	"math/big"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // precompile 0x03 is defined in terms of this exact hash

	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/ethcrypto"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// precompileFunc runs a precompiled contract against fully concrete
// calldata. There is no gas half to the interface: this engine doesn't
// meter gas beyond memory expansion.
type precompileFunc func(input bytevec.ByteVec) (out bytevec.ByteVec, success bool)

var precompiles = map[byte]precompileFunc{
	0x01: precompileEcrecover,
	0x02: precompileSha256,
	0x03: precompileRipemd160,
	0x04: precompileIdentity,
	0x05: precompileModexp,
	0x06: precompileUnsupported, // bn256Add
	0x07: precompileUnsupported, // bn256ScalarMul
	0x08: precompileUnsupported, // bn256Pairing
	0x09: precompileUnsupported, // blake2f
	0x0a: precompileUnsupported, // point evaluation (EIP-4844)
}

// precompileAt resolves a precompile by address, matching the first 19
// zero bytes + single nonzero low byte shape every real precompile
// address has.
func precompileAt(addr state.Address160) (precompileFunc, bool) {
	for i := 0; i < 19; i++ {
		if addr[i] != 0 {
			return nil, false
		}
	}
	fn, ok := precompiles[addr[19]]
	return fn, ok
}

func precompileUnsupported(bytevec.ByteVec) (bytevec.ByteVec, bool) {
	return bytevec.Empty(), false
}

func precompileIdentity(input bytevec.ByteVec) (bytevec.ByteVec, bool) {
	return input, true
}

func precompileSha256(input bytevec.ByteVec) (bytevec.ByteVec, bool) {
	data, ok := input.ConcreteBytes()
	if !ok {
		return bytevec.Empty(), false
	}
	sum := sha256.Sum256(data)
	return bytevec.FromBytes(sum[:]), true
}

func precompileRipemd160(input bytevec.ByteVec) (bytevec.ByteVec, bool) {
	data, ok := input.ConcreteBytes()
	if !ok {
		return bytevec.Empty(), false
	}
	h := ripemd160.New()
	h.Write(data)
	sum := h.Sum(nil)
	out := make([]byte, 32)
	copy(out[12:], sum)
	return bytevec.FromBytes(out), true
}

// precompileEcrecover implements the 0x01 ECRECOVER precompile: 128 bytes
// of (hash, v, r, s), returning the 32-byte zero-padded recovered address
// or empty data on any malformed/invalid input.
func precompileEcrecover(input bytevec.ByteVec) (bytevec.ByteVec, bool) {
	data, ok := input.ConcreteBytes()
	if !ok {
		return bytevec.Empty(), false
	}
	padded := make([]byte, 128)
	copy(padded, data)

	hash := padded[0:32]
	v := padded[63]
	r := padded[64:96]
	s := padded[96:128]

	if v != 27 && v != 28 {
		return bytevec.Empty(), true
	}
	var rArr, sArr, hashArr [32]byte
	copy(rArr[:], r)
	copy(sArr[:], s)
	copy(hashArr[:], hash)

	addr, err := ethcrypto.Recover(v, rArr, sArr, hashArr)
	if err != nil {
		return bytevec.Empty(), true
	}
	out := make([]byte, 32)
	copy(out[12:], addr[:])
	return bytevec.FromBytes(out), true
}

// precompileModexp implements 0x05: (base^exp) mod m over
// arbitrary-length big-endian operands.
func precompileModexp(input bytevec.ByteVec) (bytevec.ByteVec, bool) {
	data, ok := input.ConcreteBytes()
	if !ok {
		return bytevec.Empty(), false
	}
	if len(data) < 96 {
		padded := make([]byte, 96)
		copy(padded, data)
		data = padded
	}
	get := func(off int) *big.Int {
		if off+32 > len(data) {
			buf := make([]byte, 32)
			if off < len(data) {
				copy(buf, data[off:])
			}
			return new(big.Int).SetBytes(buf)
		}
		return new(big.Int).SetBytes(data[off : off+32])
	}
	baseLen := int(get(0).Uint64())
	expLen := int(get(32).Uint64())
	modLen := int(get(64).Uint64())

	rest := data[96:]
	read := func(off, length int) []byte {
		out := make([]byte, length)
		if off < len(rest) {
			copy(out, rest[off:])
		}
		return out
	}
	base := new(big.Int).SetBytes(read(0, baseLen))
	exp := new(big.Int).SetBytes(read(baseLen, expLen))
	mod := new(big.Int).SetBytes(read(baseLen+expLen, modLen))

	var result *big.Int
	if mod.Sign() == 0 {
		result = big.NewInt(0)
	} else {
		result = new(big.Int).Exp(base, exp, mod)
	}
	out := make([]byte, modLen)
	rb := result.Bytes()
	if len(rb) > modLen {
		rb = rb[len(rb)-modLen:]
	}
	copy(out[modLen-len(rb):], rb)
	return bytevec.FromBytes(out), true
}

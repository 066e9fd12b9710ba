// SPDX-License-Identifier: AGPL-3.0

package cheatcode

import (
	"math/big"

	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// word returns the i-th 32-byte ABI word of args, zero-padding reads past
// the end the same way calldata does elsewhere in this engine.
func word(args []byte, i int) [32]byte {
	var out [32]byte
	off := i * 32
	if off >= len(args) {
		return out
	}
	end := off + 32
	if end > len(args) {
		end = len(args)
	}
	copy(out[:], args[off:end])
	return out
}

func decodeUint256(args []byte, i int) *big.Int {
	w := word(args, i)
	return new(big.Int).SetBytes(w[:])
}

func decodeBool(args []byte, i int) bool {
	w := word(args, i)
	for _, b := range w {
		if b != 0 {
			return true
		}
	}
	return false
}

func decodeAddress(args []byte, i int) state.Address160 {
	w := word(args, i)
	var out state.Address160
	copy(out[:], w[12:])
	return out
}

func decodeBytes32(args []byte, i int) [32]byte {
	return word(args, i)
}

// decodeDynamic follows the offset stored at word i to a (length, data)
// pair and returns the raw bytes, for the `string`/`bytes` ABI encoding.
func decodeDynamic(args []byte, i int) []byte {
	offW := word(args, i)
	off := int(new(big.Int).SetBytes(offW[:]).Int64())
	if off < 0 || off+32 > len(args) {
		return nil
	}
	length := new(big.Int).SetBytes(args[off : off+32]).Int64()
	start := off + 32
	end := start + int(length)
	if start < 0 || end > len(args) || length < 0 {
		return nil
	}
	return args[start:end]
}

func encodeUint256(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}

func encodeBool(v bool) []byte {
	out := make([]byte, 32)
	if v {
		out[31] = 1
	}
	return out
}

func encodeAddress(a state.Address160) []byte {
	out := make([]byte, 32)
	copy(out[12:], a[:])
	return out
}

func encodeBytes32(b [32]byte) []byte {
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// encodeDynamic renders the standard ABI (offset=0x20, length, data...)
// encoding for a single dynamic `bytes`/`string` return value.
func encodeDynamic(data []byte) []byte {
	out := make([]byte, 0, 64+len(data)+31)
	out = append(out, encodeUint256(big.NewInt(32))...)
	out = append(out, encodeUint256(big.NewInt(int64(len(data))))...)
	out = append(out, data...)
	pad := (32 - len(data)%32) % 32
	out = append(out, make([]byte, pad)...)
	return out
}

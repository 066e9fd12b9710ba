// SPDX-License-Identifier: AGPL-3.0

package cheatcode

import (
	"encoding/hex"
	"math/big"
	"os"
	"strings"

	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// The env* cheatcodes read values out of the test process's environment,
// matching Foundry's envBool/envUint/... family: the scalar form takes the
// variable name, the array form takes (name, delimiter) and splits the raw
// value before parsing each element. An unset variable or an unparseable
// value is an InvalidParameter halt, same as Foundry's revert.

func lookupEnv(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", evmerrors.NewInvalidParameter("environment variable not set: " + name)
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, evmerrors.NewInvalidParameter("cannot parse as bool: " + raw)
}

func parseUint(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 0)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, evmerrors.NewInvalidParameter("cannot parse as uint256: " + raw)
	}
	return v, nil
}

func parseInt(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 0)
	if !ok || v.BitLen() > 255 {
		return nil, evmerrors.NewInvalidParameter("cannot parse as int256: " + raw)
	}
	return v, nil
}

func parseHex(raw string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		return nil, evmerrors.NewInvalidParameter("cannot parse as hex: " + raw)
	}
	return b, nil
}

func parseAddress(raw string) (state.Address160, error) {
	b, err := parseHex(raw)
	if err != nil {
		return state.Address160{}, err
	}
	if len(b) != 20 {
		return state.Address160{}, evmerrors.NewInvalidParameter("address must be 20 bytes: " + raw)
	}
	var out state.Address160
	copy(out[:], b)
	return out, nil
}

// parseBytes32 right-pads short hex values, the fixed-bytes convention.
func parseBytes32(raw string) ([32]byte, error) {
	var out [32]byte
	b, err := parseHex(raw)
	if err != nil {
		return out, err
	}
	if len(b) > 32 {
		return out, evmerrors.NewInvalidParameter("bytes32 value too long: " + raw)
	}
	copy(out[:], b)
	return out, nil
}

// encodeTwosComplement renders a (possibly negative) int256 as its 32-byte
// two's-complement ABI word.
func encodeTwosComplement(v *big.Int) []byte {
	if v.Sign() >= 0 {
		return encodeUint256(v)
	}
	m := new(big.Int).Lsh(big.NewInt(1), 256)
	return encodeUint256(new(big.Int).Add(m, v))
}

// encodeWordArray renders []T for a static 32-byte element type T:
// offset, length, then the words.
func encodeWordArray(words [][]byte) []byte {
	out := make([]byte, 0, 64+32*len(words))
	out = append(out, encodeUint256(big.NewInt(32))...)
	out = append(out, encodeUint256(big.NewInt(int64(len(words))))...)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// encodeDynamicArray renders bytes[]/string[]: offset, length, per-element
// head offsets (relative to the start of the element area), then each
// element's (length, data, padding) tail.
func encodeDynamicArray(elems [][]byte) []byte {
	n := len(elems)
	head := make([]byte, 0, 32*n)
	tail := make([]byte, 0)
	for _, e := range elems {
		head = append(head, encodeUint256(big.NewInt(int64(32*n+len(tail))))...)
		tail = append(tail, encodeUint256(big.NewInt(int64(len(e))))...)
		tail = append(tail, e...)
		pad := (32 - len(e)%32) % 32
		tail = append(tail, make([]byte, pad)...)
	}
	out := make([]byte, 0, 64+len(head)+len(tail))
	out = append(out, encodeUint256(big.NewInt(32))...)
	out = append(out, encodeUint256(big.NewInt(int64(n)))...)
	out = append(out, head...)
	out = append(out, tail...)
	return out
}

func envScalar(args []byte, encode func(raw string) ([]byte, error)) (bytevec.ByteVec, error) {
	raw, err := lookupEnv(string(decodeDynamic(args, 0)))
	if err != nil {
		return bytevec.Empty(), err
	}
	word, err := encode(raw)
	if err != nil {
		return bytevec.Empty(), err
	}
	return bytevec.FromBytes(word), nil
}

func envWordArray(args []byte, encode func(raw string) ([]byte, error)) (bytevec.ByteVec, error) {
	raw, err := lookupEnv(string(decodeDynamic(args, 0)))
	if err != nil {
		return bytevec.Empty(), err
	}
	delim := string(decodeDynamic(args, 1))
	parts := strings.Split(raw, delim)
	words := make([][]byte, 0, len(parts))
	for _, p := range parts {
		w, err := encode(p)
		if err != nil {
			return bytevec.Empty(), err
		}
		words = append(words, w)
	}
	return bytevec.FromBytes(encodeWordArray(words)), nil
}

func encodeEnvBool(raw string) ([]byte, error) {
	v, err := parseBool(raw)
	if err != nil {
		return nil, err
	}
	return encodeBool(v), nil
}

func encodeEnvUint(raw string) ([]byte, error) {
	v, err := parseUint(raw)
	if err != nil {
		return nil, err
	}
	return encodeUint256(v), nil
}

func encodeEnvInt(raw string) ([]byte, error) {
	v, err := parseInt(raw)
	if err != nil {
		return nil, err
	}
	return encodeTwosComplement(v), nil
}

func encodeEnvAddress(raw string) ([]byte, error) {
	v, err := parseAddress(raw)
	if err != nil {
		return nil, err
	}
	return encodeAddress(v), nil
}

func encodeEnvBytes32(raw string) ([]byte, error) {
	v, err := parseBytes32(raw)
	if err != nil {
		return nil, err
	}
	return encodeBytes32(v), nil
}

func cheatEnvBool(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envScalar(args, encodeEnvBool)
}

func cheatEnvUint(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envScalar(args, encodeEnvUint)
}

func cheatEnvInt(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envScalar(args, encodeEnvInt)
}

func cheatEnvAddress(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envScalar(args, encodeEnvAddress)
}

func cheatEnvBytes32(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envScalar(args, encodeEnvBytes32)
}

func cheatEnvBytes(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	raw, err := lookupEnv(string(decodeDynamic(args, 0)))
	if err != nil {
		return bytevec.Empty(), err
	}
	b, err := parseHex(raw)
	if err != nil {
		return bytevec.Empty(), err
	}
	return bytevec.FromBytes(encodeDynamic(b)), nil
}

func cheatEnvString(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	raw, err := lookupEnv(string(decodeDynamic(args, 0)))
	if err != nil {
		return bytevec.Empty(), err
	}
	return bytevec.FromBytes(encodeDynamic([]byte(raw))), nil
}

func cheatEnvBoolArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envWordArray(args, encodeEnvBool)
}

func cheatEnvUintArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envWordArray(args, encodeEnvUint)
}

func cheatEnvIntArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envWordArray(args, encodeEnvInt)
}

func cheatEnvAddressArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envWordArray(args, encodeEnvAddress)
}

func cheatEnvBytes32Array(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envWordArray(args, encodeEnvBytes32)
}

func envDynamicArray(args []byte, convert func(raw string) ([]byte, error)) (bytevec.ByteVec, error) {
	raw, err := lookupEnv(string(decodeDynamic(args, 0)))
	if err != nil {
		return bytevec.Empty(), err
	}
	delim := string(decodeDynamic(args, 1))
	parts := strings.Split(raw, delim)
	elems := make([][]byte, 0, len(parts))
	for _, p := range parts {
		e, err := convert(p)
		if err != nil {
			return bytevec.Empty(), err
		}
		elems = append(elems, e)
	}
	return bytevec.FromBytes(encodeDynamicArray(elems)), nil
}

func cheatEnvBytesArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envDynamicArray(args, parseHex)
}

func cheatEnvStringArray(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return envDynamicArray(args, func(raw string) ([]byte, error) { return []byte(raw), nil })
}

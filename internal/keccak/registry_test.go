package keccak

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

func prefixOf(hash []byte) uint64 { return binary.BigEndian.Uint64(hash[:8]) }

func keccakOf(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	e := symir.NewVar("x", 256)
	r.Register(e, nil)
	r.Register(e, nil)
	require.Equal(t, 1, r.Len())
}

func TestGetIDStableAcrossStructurallyEqualExprs(t *testing.T) {
	r := New()
	a := symir.NewBin(symir.OpAdd, 256, symir.NewVar("x", 256), symir.NewVar("y", 256))
	b := symir.NewBin(symir.OpAdd, 256, symir.NewVar("x", 256), symir.NewVar("y", 256))
	r.Register(a, nil)

	id, ok := r.GetID(b)
	require.True(t, ok)
	require.Equal(t, 0, id)
}

func TestReverseLookupExactMatch(t *testing.T) {
	r := New()
	e := symir.NewVar("slot", 256)
	var hash [32]byte
	hash[0] = 0xAB
	r.Register(e, hash[:])

	got, ok := r.ReverseLookup(prefixOf(hash[:]))
	require.True(t, ok)
	require.Equal(t, e.String(), got)
}

func TestReverseLookupWithDelta(t *testing.T) {
	r := New()
	e := symir.NewVar("base", 256)
	var hash [32]byte
	hash[7] = 10
	r.Register(e, hash[:])

	got, ok := r.ReverseLookup(prefixOf(hash[:]) + 3)
	require.True(t, ok)
	require.Contains(t, got, "+ 3")
}

func TestReverseLookupFallsBackToPrecomputed(t *testing.T) {
	r := New()
	// keccak256(uint256(5)) is in the precomputed [0,256) table even though
	// nothing was ever Register()ed in this registry.
	var word [32]byte
	word[31] = 5
	h := keccakOf(word[:])

	got, ok := r.ReverseLookup(prefixOf(h[:]))
	require.True(t, ok)
	require.Contains(t, got, "0x")
}

func TestReverseLookupMiss(t *testing.T) {
	r := New()
	_, ok := r.ReverseLookup(0xdeadbeefdeadbeef)
	require.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	r := New()
	r.Register(symir.NewVar("x", 256), nil)
	c := r.Copy()
	c.Register(symir.NewVar("y", 256), nil)

	require.Equal(t, 1, r.Len())
	require.Equal(t, 2, c.Len())
}

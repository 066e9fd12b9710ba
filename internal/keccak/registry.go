// SPDX-License-Identifier: AGPL-3.0

// Package keccak implements the per-path keccak hash registry: a mapping
// from canonicalized sha3 expressions to stable ids, plus a reverse
// lookup from concrete hash prefixes (possibly offset by a small delta)
// back to the preimage expression, which is how storage slots computed as
// keccak(base)+offset get symbolic names.
package keccak

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

const maxOffset = 1024

// Registry is copy-on-fork: Copy() returns a logically independent registry
// that shares no mutable state with its parent (both maps are copied entry
// by entry).
type Registry struct {
	ids       map[string]int
	hashToExp map[uint64]string // first 8 bytes of a 32-byte hash -> expr canonical string
	nextID    int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{ids: map[string]int{}, hashToExp: map[uint64]string{}}
}

// Register assigns a stable id to expr if not already registered
// (idempotent on structural/canonical equality) and, if a concrete 32-byte
// hash value is known, stores it for reverse lookup.
func (r *Registry) Register(expr *symir.Expr, concreteHash []byte) {
	key := expr.String()
	if _, ok := r.ids[key]; ok {
		return
	}
	id := r.nextID
	r.nextID++
	r.ids[key] = id

	if len(concreteHash) == 32 {
		prefix := binary.BigEndian.Uint64(concreteHash[:8])
		r.hashToExp[prefix] = key
	}
}

// GetID returns the stable id for expr, if registered.
func (r *Registry) GetID(expr *symir.Expr) (int, bool) {
	id, ok := r.ids[expr.String()]
	return id, ok
}

// Len reports the number of distinct registered expressions.
func (r *Registry) Len() int { return len(r.ids) }

// ReverseLookup finds a registered preimage expression whose hash equals
// hashPrefix exactly or differs by a delta in [-1024, 1024], returning
// "(<expr> + delta)" for nonzero deltas and the bare expr otherwise. Falls
// back to the precomputed small-integer table on a miss.
func (r *Registry) ReverseLookup(hashPrefix uint64) (string, bool) {
	if expr, ok := r.hashToExp[hashPrefix]; ok {
		return expr, true
	}
	for delta := int64(1); delta <= maxOffset; delta++ {
		if base := hashPrefix - uint64(delta); true {
			if expr, ok := r.hashToExp[base]; ok {
				return formatDelta(expr, delta), true
			}
		}
	}
	for delta := int64(1); delta <= maxOffset; delta++ {
		plus := hashPrefix + uint64(delta)
		if expr, ok := r.hashToExp[plus]; ok {
			return formatDelta(expr, -delta), true
		}
	}
	if expr, ok := precomputedLookup(hashPrefix); ok {
		return expr, true
	}
	return "", false
}

func formatDelta(expr string, delta int64) string {
	if delta == 0 {
		return expr
	}
	sign := "+"
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return "(" + expr + " " + sign + " " + itoa(delta) + ")"
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Copy returns a logically independent registry (used at fork points).
func (r *Registry) Copy() *Registry {
	out := &Registry{
		ids:       make(map[string]int, len(r.ids)),
		hashToExp: make(map[uint64]string, len(r.hashToExp)),
		nextID:    r.nextID,
	}
	for k, v := range r.ids {
		out.ids[k] = v
	}
	for k, v := range r.hashToExp {
		out.hashToExp[k] = v
	}
	return out
}

// precomputedTable holds keccak(i) for i in [0,256), computed once at
// package init via golang.org/x/crypto/sha3 rather than hand-written,
// since the values are mechanically derivable from i.
var precomputedTable = buildPrecomputedTable()

func buildPrecomputedTable() map[uint64]string {
	table := make(map[uint64]string, 256)
	for i := 0; i < 256; i++ {
		var word [32]byte
		word[31] = byte(i)
		h := sha3.NewLegacyKeccak256()
		h.Write(word[:])
		sum := h.Sum(nil)
		prefix := binary.BigEndian.Uint64(sum[:8])
		table[prefix] = preimageLabel(i)
	}
	return table
}

func preimageLabel(i int) string {
	return "keccak256(0x" + hex32(i) + ")"
}

func hex32(i int) string {
	const hexdigits = "0123456789abcdef"
	var buf [64]byte
	v := i
	for pos := 63; pos >= 0; pos-- {
		buf[pos] = hexdigits[v&0xf]
		v >>= 4
	}
	return string(buf[:])
}

func precomputedLookup(hashPrefix uint64) (string, bool) {
	expr, ok := precomputedTable[hashPrefix]
	return expr, ok
}

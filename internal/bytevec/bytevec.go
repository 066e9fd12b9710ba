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

// Package bytevec implements the ordered byte sequence (concrete and/or
// symbolic) that backs EVM memory, calldata and returndata. A ByteVec is a
// persistent value: every mutator returns a new ByteVec sharing the
// unmodified segments with its parent, so forking a state never requires
// a deep copy of memory.
package bytevec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
)

// segment is either a run of concrete bytes or a single symbolic byte-width
// bitvector of the same length.
type segment struct {
	data []byte // non-nil => concrete
	sym  bitvec.BV
	n    int // byte length
}

func (s segment) length() int { return s.n }

// ByteVec is an immutable sequence of bytes.
type ByteVec struct {
	segs []segment
}

// Empty returns a zero-length ByteVec.
func Empty() ByteVec { return ByteVec{} }

// FromBytes builds a fully concrete ByteVec.
func FromBytes(b []byte) ByteVec {
	if len(b) == 0 {
		return Empty()
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return ByteVec{segs: []segment{{data: cp, n: len(cp)}}}
}

// FromBV wraps a single bitvector as a big-endian byte sequence of
// Width()/8 bytes. Concrete values flatten to plain bytes; symbolic values
// become one symbolic segment.
func FromBV(b bitvec.BV) ByteVec {
	n := int(b.Width() / 8)
	if n == 0 {
		return Empty()
	}
	if b.IsConcrete() {
		data := make([]byte, n)
		b.AsBigInt().FillBytes(data)
		return ByteVec{segs: []segment{{data: data, n: n}}}
	}
	return ByteVec{segs: []segment{{sym: b, n: n}}}
}

// Len returns the total byte length.
func (v ByteVec) Len() int {
	n := 0
	for _, s := range v.segs {
		n += s.length()
	}
	return n
}

// Concat returns a new ByteVec with b appended after v.
func Concat(a, b ByteVec) ByteVec {
	out := make([]segment, 0, len(a.segs)+len(b.segs))
	out = append(out, a.segs...)
	out = append(out, b.segs...)
	return ByteVec{segs: out}
}

// Slice returns length bytes starting at offset. Reads past the end yield
// zero bytes, matching EVM memory/calldata semantics.
func (v ByteVec) Slice(offset, length uint64) ByteVec {
	if length == 0 {
		return Empty()
	}
	var out []segment
	pos := uint64(0)
	remainingStart := offset
	remainingLen := length
	for _, s := range v.segs {
		segLen := uint64(s.length())
		segEnd := pos + segLen
		if remainingLen == 0 {
			break
		}
		if segEnd > remainingStart && pos < remainingStart+remainingLen {
			lo := uint64(0)
			if remainingStart > pos {
				lo = remainingStart - pos
			}
			hi := segLen
			if remainingStart+remainingLen < segEnd {
				hi = remainingStart + remainingLen - pos
			}
			out = append(out, sliceSegment(s, lo, hi))
		}
		pos = segEnd
	}
	got := ByteVec{segs: out}
	gotLen := uint64(got.Len())
	if gotLen < length {
		got = Concat(got, zeroSegment(length-gotLen))
	}
	return got
}

func sliceSegment(s segment, lo, hi uint64) segment {
	if s.data != nil {
		return segment{data: append([]byte(nil), s.data[lo:hi]...), n: int(hi - lo)}
	}
	hiBit := s.sym.Width() - 1 - uint(lo)*8
	loBit := s.sym.Width() - uint(hi)*8
	sub := bitvec.Extract(hiBit, loBit, s.sym)
	return segment{sym: sub, n: int(hi - lo)}
}

func zeroSegment(n uint64) ByteVec {
	if n == 0 {
		return Empty()
	}
	return ByteVec{segs: []segment{{data: make([]byte, n), n: int(n)}}}
}

// ReadWord reads a big-endian 32-byte word at offset, zero-padding short
// reads past the end of the buffer.
func (v ByteVec) ReadWord(offset uint64) bitvec.BV {
	sl := v.Slice(offset, 32)
	return sl.asWordBV()
}

func (v ByteVec) asWordBV() bitvec.BV {
	if len(v.segs) == 0 {
		return bitvec.FromU64(0, 256)
	}
	var acc bitvec.BV
	first := true
	for _, s := range v.segs {
		var part bitvec.BV
		if s.data != nil {
			part = bitvec.FromBigInt(new(big.Int).SetBytes(s.data), uint(s.n)*8)
		} else {
			part = s.sym
		}
		if first {
			acc = part
			first = false
		} else {
			acc = bitvec.Concat(acc, part)
		}
	}
	if acc.Width() < 256 {
		acc = bitvec.ZeroExtend(256, acc)
	}
	return acc
}

// WriteWord writes a 256-bit word as 32 big-endian bytes at offset,
// returning a new ByteVec expanded as needed.
func (v ByteVec) WriteWord(offset uint64, word bitvec.BV) ByteVec {
	return v.writeBytes(offset, wordToSegment(word))
}

// WriteByte writes a single byte (the low 8 bits of value) at offset.
func (v ByteVec) WriteByte(offset uint64, value bitvec.BV) ByteVec {
	b := bitvec.Extract(7, 0, value)
	return v.writeBytes(offset, segFromBV(b, 1))
}

func wordToSegment(word bitvec.BV) segment {
	return segFromBV(word, 32)
}

func segFromBV(b bitvec.BV, n int) segment {
	if b.IsConcrete() {
		bs := b.Bytes32()
		return segment{data: append([]byte(nil), bs[32-n:]...), n: n}
	}
	return segment{sym: b, n: n}
}

func (v ByteVec) writeBytes(offset uint64, s segment) ByteVec {
	end := offset + uint64(s.length())
	cur := uint64(v.Len())
	base := v
	if cur < end {
		base = Concat(base, zeroSegment(end-cur))
	}
	before := base.Slice(0, offset)
	afterLen := uint64(base.Len()) - end
	after := base.Slice(end, afterLen)
	mid := ByteVec{segs: []segment{s}}
	return Concat(Concat(before, mid), after)
}

// IsFullyConcrete reports whether every segment is concrete.
func (v ByteVec) IsFullyConcrete() bool {
	for _, s := range v.segs {
		if s.data == nil {
			return false
		}
	}
	return true
}

// ConcreteBytes returns the flattened concrete bytes, or ok=false if any
// segment is symbolic.
func (v ByteVec) ConcreteBytes() (out []byte, ok bool) {
	if !v.IsFullyConcrete() {
		return nil, false
	}
	for _, s := range v.segs {
		out = append(out, s.data...)
	}
	return out, true
}

// CanonicalString renders a deterministic textual form of the content,
// used to build the sha3_<len>(data) keccak-registry key for symbolic
// reads.
func (v ByteVec) CanonicalString() string {
	var sb strings.Builder
	for i, s := range v.segs {
		if i > 0 {
			sb.WriteByte('|')
		}
		if s.data != nil {
			fmt.Fprintf(&sb, "c:%x", s.data)
		} else {
			fmt.Fprintf(&sb, "s:%s", s.sym.Expr().String())
		}
	}
	return sb.String()
}

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

// Package state implements the execution-state representation: accounts,
// world state, the path condition, and the full per-path ExecutionState
// that the interpreter steps. Storage and memory use persistent data
// structures so forking a state is cheap.
package state

import (
	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
)

// Address160 is a 160-bit account address.
type Address160 [20]byte

// StorageKey is the canonical (string-rendered) key a storage map is keyed
// by, so both concrete and symbolic 256-bit keys can share one map type.
type StorageKey string

func keyOf(k bitvec.BV) StorageKey {
	if k.IsConcrete() {
		return StorageKey("c:" + k.AsBigInt().String())
	}
	return StorageKey("s:" + k.Expr().String())
}

// Storage is a persistent map from 256-bit key to 256-bit value, defaulting
// to zero for unwritten keys. Concrete and symbolic keys share the flat
// table through the canonical rendering above; symbolic-key aliasing is
// reasoned about at the solver layer, not here (HasSymbolicKeys tells the
// caller when that matters).
type Storage struct {
	values map[StorageKey]bitvec.BV
	keyBVs map[StorageKey]bitvec.BV
}

// NewStorage returns empty storage (all keys read as zero).
func NewStorage() *Storage {
	return &Storage{values: map[StorageKey]bitvec.BV{}, keyBVs: map[StorageKey]bitvec.BV{}}
}

// Load reads the value at key, defaulting to the zero 256-bit word.
func (s *Storage) Load(key bitvec.BV) bitvec.BV {
	if v, ok := s.values[keyOf(key)]; ok {
		return v
	}
	return bitvec.FromU64(0, 256)
}

// Store writes value at key and returns a new Storage (the receiver is left
// unmodified), preserving persistence across forks.
func (s *Storage) Store(key, value bitvec.BV) *Storage {
	out := s.clone()
	k := keyOf(key)
	out.values[k] = value
	out.keyBVs[k] = key
	return out
}

// HasSymbolicKeys reports whether any write used a symbolic key; the solver
// façade uses this to decide whether a query needs an SMT array model.
func (s *Storage) HasSymbolicKeys() bool {
	for _, bv := range s.keyBVs {
		if !bv.IsConcrete() {
			return true
		}
	}
	return false
}

// Keys returns the bitvector keys that have been written, for model
// reconstruction / debug dumps.
func (s *Storage) Keys() []bitvec.BV {
	out := make([]bitvec.BV, 0, len(s.keyBVs))
	for _, k := range s.keyBVs {
		out = append(out, k)
	}
	return out
}

func (s *Storage) clone() *Storage {
	out := &Storage{
		values: make(map[StorageKey]bitvec.BV, len(s.values)),
		keyBVs: make(map[StorageKey]bitvec.BV, len(s.keyBVs)),
	}
	for k, v := range s.values {
		out.values[k] = v
	}
	for k, v := range s.keyBVs {
		out.keyBVs[k] = v
	}
	return out
}

// Account is { address, balance, immutable code, storage }.
type Account struct {
	Address   Address160
	Balance   bitvec.BV
	Code      bytevec.ByteVec
	Storage   *Storage
	Destroyed bool
}

// NewAccount returns a fresh account with zero balance, empty code and
// empty storage.
func NewAccount(addr Address160) *Account {
	return &Account{
		Address: addr,
		Balance: bitvec.FromU64(0, 256),
		Code:    bytevec.Empty(),
		Storage: NewStorage(),
	}
}

// Clone returns a value copy suitable for copy-on-write installation into a
// forked World; Storage itself is replaced wholesale on write (Store
// returns a new *Storage), so sharing the pointer here is safe until the
// next Store call.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}

// World is the address -> Account mapping. It is copy-on-write: Get returns
// the shared account, and any mutating caller must install the result of
// Account.Clone()-then-mutate back via Set.
type World struct {
	accounts map[Address160]*Account
}

// NewWorld returns an empty world state.
func NewWorld() *World {
	return &World{accounts: map[Address160]*Account{}}
}

// Get returns the account at addr, creating an empty one on first access
// (EVM accounts default to zero balance / no code / empty storage).
func (w *World) Get(addr Address160) *Account {
	if a, ok := w.accounts[addr]; ok {
		return a
	}
	a := NewAccount(addr)
	w.accounts[addr] = a
	return a
}

// Exists reports whether addr has ever been touched (as opposed to the
// implicit zero account Get would synthesize).
func (w *World) Exists(addr Address160) bool {
	_, ok := w.accounts[addr]
	return ok
}

// Set installs acc, replacing whatever was at acc.Address.
func (w *World) Set(acc *Account) { w.accounts[acc.Address] = acc }

// Snapshot returns a shallow copy-on-write clone: account pointers are
// shared until a mutator calls Set with a cloned+modified account, which
// keeps forks cheap.
func (w *World) Snapshot() *World {
	out := &World{accounts: make(map[Address160]*Account, len(w.accounts))}
	for k, v := range w.accounts {
		out.accounts[k] = v
	}
	return out
}

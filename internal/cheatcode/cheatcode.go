// SPDX-License-Identifier: AGPL-3.0

// Package cheatcode implements the engine's intercepted "cheat address"
// calls: Foundry-style test manipulation (prank, deal, storage pokes, block
// context) plus the symbolic-value-creation cheatcodes a property-testing
// harness needs (createUint/createBool/...). Selectors are
// computed at init time from their Solidity signatures via the real
// keccak256 hash, not hand-copied from memory, so they match actual ABI
// dispatch exactly.
package cheatcode

import (
	"math/big"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/ethcrypto"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// handler executes one cheatcode against the calling state and returns its
// ABI-encoded return data. The return type is ByteVec, not []byte, because
// the createUint/createBytes/... family returns fresh symbolic values that
// have no concrete byte rendering.
type handler func(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error)

func selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	sum := h.Sum(nil)
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}

var table = map[[4]byte]handler{}

func register(sig string, fn handler) { table[selector(sig)] = fn }

func init() {
	register("prank(address)", cheatPrank)
	register("startPrank(address)", cheatStartPrank)
	register("stopPrank()", cheatStopPrank)
	register("deal(address,uint256)", cheatDeal)
	register("store(address,bytes32,bytes32)", cheatStore)
	register("load(address,bytes32)", cheatLoad)
	register("assume(bool)", cheatAssume)
	register("warp(uint256)", cheatWarp)
	register("roll(uint256)", cheatRoll)
	register("fee(uint256)", cheatFee)
	register("chainId(uint256)", cheatChainID)
	register("etch(address,bytes)", cheatEtch)
	register("getCode(string)", cheatGetCode)
	register("addr(uint256)", cheatAddr)
	register("sign(uint256,bytes32)", cheatSign)
	register("label(address,string)", cheatLabel)

	register("envBool(string)", cheatEnvBool)
	register("envUint(string)", cheatEnvUint)
	register("envInt(string)", cheatEnvInt)
	register("envAddress(string)", cheatEnvAddress)
	register("envBytes32(string)", cheatEnvBytes32)
	register("envBytes(string)", cheatEnvBytes)
	register("envString(string)", cheatEnvString)

	register("envBool(string,string)", cheatEnvBoolArray)
	register("envUint(string,string)", cheatEnvUintArray)
	register("envInt(string,string)", cheatEnvIntArray)
	register("envAddress(string,string)", cheatEnvAddressArray)
	register("envBytes32(string,string)", cheatEnvBytes32Array)
	register("envBytes(string,string)", cheatEnvBytesArray)
	register("envString(string,string)", cheatEnvStringArray)

	register("createUint(uint256,string)", cheatCreateUint)
	register("createInt(uint256,string)", cheatCreateInt)
	register("createAddress(string)", cheatCreateAddress)
	register("createBytes(uint256,string)", cheatCreateBytes)
	register("createBool(string)", cheatCreateBool)
	register("createString(uint256,string)", cheatCreateString)
	register("createBytes4(string)", cheatCreateBytes4)
	register("createBytes32(string)", cheatCreateBytes32)

	register("fail()", cheatFail)
}

// Dispatcher holds the cross-path, read-mostly context a cheatcode
// implementation needs beyond the ExecutionState it's called against: the
// artifact's named contracts (for getCode) and accumulated
// address labels (cosmetic, surfaced in reports only).
type Dispatcher struct {
	mu        sync.Mutex
	Contracts map[string][]byte
	labels    map[state.Address160]string
}

// NewDispatcher returns a Dispatcher seeded with the artifact's named
// contract bytecodes (getCode resolves names against this set).
func NewDispatcher(contracts map[string][]byte) *Dispatcher {
	return &Dispatcher{Contracts: contracts, labels: map[state.Address160]string{}}
}

// Dispatch decodes the 4-byte selector and ABI-decodes/executes the
// matching cheatcode, returning ABI-encoded return data. An unrecognized
// selector is treated as a no-op returning empty data, matching Foundry's
// behavior for cheats a given harness doesn't implement.
func (d *Dispatcher) Dispatch(s *state.ExecutionState, sv *solver.Solver, calldata bytevec.ByteVec) (bytevec.ByteVec, error) {
	raw, ok := calldata.ConcreteBytes()
	if !ok || len(raw) < 4 {
		return bytevec.Empty(), evmerrors.NewNotConcrete("cheatcode calldata")
	}
	var sel [4]byte
	copy(sel[:], raw[:4])
	fn, ok := table[sel]
	if !ok {
		return bytevec.Empty(), nil
	}
	return fn(d, s, sv, raw[4:])
}

func (d *Dispatcher) label(addr state.Address160) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.labels[addr]
}

func (d *Dispatcher) setLabel(addr state.Address160, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.labels[addr] = name
}

func cheatPrank(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.PrankActive = true
	s.PrankSender = decodeAddress(args, 0)
	s.PrankPersistent = false
	return bytevec.Empty(), nil
}

func cheatStartPrank(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.PrankActive = true
	s.PrankSender = decodeAddress(args, 0)
	s.PrankPersistent = true
	return bytevec.Empty(), nil
}

func cheatStopPrank(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.PrankActive = false
	s.PrankPersistent = false
	return bytevec.Empty(), nil
}

func cheatDeal(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	addr := decodeAddress(args, 0)
	amount := decodeUint256(args, 1)
	acc := s.World.Get(addr).Clone()
	acc.Balance = bitvec.FromBigInt(amount, 256)
	s.World.Set(acc)
	return bytevec.Empty(), nil
}

func cheatStore(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	addr := decodeAddress(args, 0)
	slot := decodeBytes32(args, 1)
	val := decodeBytes32(args, 2)
	acc := s.World.Get(addr).Clone()
	key := bitvec.FromBigInt(new(big.Int).SetBytes(slot[:]), 256)
	value := bitvec.FromBigInt(new(big.Int).SetBytes(val[:]), 256)
	acc.Storage = acc.Storage.Store(key, value)
	s.World.Set(acc)
	return bytevec.Empty(), nil
}

func cheatLoad(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	addr := decodeAddress(args, 0)
	slot := decodeBytes32(args, 1)
	acc := s.World.Get(addr)
	key := bitvec.FromBigInt(new(big.Int).SetBytes(slot[:]), 256)
	v := acc.Storage.Load(key)
	if v.IsConcrete() {
		return bytevec.FromBytes(encodeUint256(v.AsBigInt())), nil
	}
	// A symbolic stored value flows back as a symbolic word; the caller's
	// decoded return value stays symbolic the same way an SLOAD would.
	return bytevec.FromBV(v), nil
}

func cheatAssume(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	w := word(args, 0)
	cond := symir.NewCmp(symir.OpEq, symir.NewConst(new(big.Int).SetBytes(w[:]), 256), symir.NewConst(big.NewInt(0), 256))
	notZero := symir.NewBoolOp(symir.OpLNot, cond)
	conds := append(append([]*symir.Expr(nil), s.PathCond...), notZero)
	res, err := sv.Check(conds)
	if err != nil {
		return bytevec.Empty(), err
	}
	if res.Kind == solver.Unsat {
		return bytevec.Empty(), evmerrors.NewInfeasiblePath("assume() refuted")
	}
	s.AddCond(notZero)
	return bytevec.Empty(), nil
}

func cheatWarp(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.Block.Timestamp = bitvec.FromBigInt(decodeUint256(args, 0), 256)
	return bytevec.Empty(), nil
}

func cheatRoll(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.Block.Number = bitvec.FromBigInt(decodeUint256(args, 0), 256)
	return bytevec.Empty(), nil
}

func cheatFee(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.Block.BaseFee = bitvec.FromBigInt(decodeUint256(args, 0), 256)
	return bytevec.Empty(), nil
}

func cheatChainID(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	s.Block.ChainID = bitvec.FromBigInt(decodeUint256(args, 0), 256)
	return bytevec.Empty(), nil
}

func cheatEtch(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	addr := decodeAddress(args, 0)
	code := decodeDynamic(args, 1)
	acc := s.World.Get(addr).Clone()
	acc.Code = bytevec.FromBytes(code)
	s.World.Set(acc)
	return bytevec.Empty(), nil
}

func cheatGetCode(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	name := string(decodeDynamic(args, 0))
	code := d.Contracts[name]
	return bytevec.FromBytes(encodeDynamic(code)), nil
}

func cheatAddr(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	priv := decodeUint256(args, 0)
	addr, err := ethcrypto.AddressFromPrivateKey(priv)
	if err != nil {
		return bytevec.Empty(), evmerrors.NewInvalidParameter(err.Error())
	}
	return bytevec.FromBytes(encodeAddress(addr)), nil
}

func cheatSign(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	priv := decodeUint256(args, 0)
	digest := decodeBytes32(args, 1)
	v, r, sSig, err := ethcrypto.Sign(priv, digest)
	if err != nil {
		return bytevec.Empty(), evmerrors.NewInvalidParameter(err.Error())
	}
	out := make([]byte, 0, 96)
	out = append(out, encodeUint256(big.NewInt(int64(v)))...)
	out = append(out, r[:]...)
	out = append(out, sSig[:]...)
	return bytevec.FromBytes(out), nil
}

func cheatLabel(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	addr := decodeAddress(args, 0)
	name := string(decodeDynamic(args, 1))
	d.setLabel(addr, name)
	return bytevec.Empty(), nil
}

func cheatFail(d *Dispatcher, s *state.ExecutionState, sv *solver.Solver, args []byte) (bytevec.ByteVec, error) {
	return bytevec.Empty(), evmerrors.NewFailCheatcode()
}

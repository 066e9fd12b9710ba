// SPDX-License-Identifier: AGPL-3.0

// Package attestation implements the optional signed verdict for a run:
// a VerificationResult hashed with Keccak256 over its canonical JSON
// encoding, then signed with secp256k1 ECDSA so any third party can
// ecrecover the prover's address from the signature alone.
package attestation

import (
	"encoding/json"
	"math/big"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/ethcrypto"
	"github.com/web-ghost-dotcom/cbse/internal/report"
	"github.com/web-ghost-dotcom/cbse/internal/state"
)

// VerificationResult is the payload an Attestation signs over: enough to
// bind a verdict to the exact bytecode and spec it was checked against.
type VerificationResult struct {
	Passed               bool              `json:"passed"`
	ContractBytecodeHash [32]byte          `json:"contract_bytecode_hash"`
	SpecHash             [32]byte          `json:"spec_hash"`
	Timestamp            int64             `json:"timestamp"`
	Details              report.MainResult `json:"details"`
}

// Attestation is the signed verdict for one (bytecode, test) run: the
// payload, its Keccak256 hash, a 65-byte [r || s || v] signature (v in the
// legacy {27,28} range), and the address that signature recovers to.
type Attestation struct {
	VerifierVersion string             `json:"verifier_version"`
	ResultHash      [32]byte           `json:"result_hash"`
	ProverAddress   state.Address160   `json:"prover_address"`
	Signature       [65]byte           `json:"signature"`
	Payload         VerificationResult `json:"payload"`
}

func keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// HashResult renders result's canonical JSON encoding and returns its
// Keccak256 digest — the value actually signed.
func HashResult(result VerificationResult) ([32]byte, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return [32]byte{}, err
	}
	return keccak256(b), nil
}

// Sign builds a VerificationResult from main (bytecodeHash/specHash bind it
// to the exact artifact verified), hashes it, and signs the hash with
// privKey, returning the full Attestation. The prover address is
// keccak(uncompressed_pubkey[1:])[12:], the standard Ethereum derivation.
func Sign(verifierVersion string, bytecodeHash, specHash [32]byte, main report.MainResult, privKey *big.Int, now time.Time) (*Attestation, error) {
	result := VerificationResult{
		Passed:               main.Exitcode == report.Pass,
		ContractBytecodeHash: bytecodeHash,
		SpecHash:             specHash,
		Timestamp:            now.Unix(),
		Details:              main,
	}
	hash, err := HashResult(result)
	if err != nil {
		return nil, err
	}
	v, r, s, err := ethcrypto.Sign(privKey, hash)
	if err != nil {
		return nil, err
	}
	addr, err := ethcrypto.AddressFromPrivateKey(privKey)
	if err != nil {
		return nil, err
	}
	var sig [65]byte
	copy(sig[0:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v

	return &Attestation{
		VerifierVersion: verifierVersion,
		ResultHash:      hash,
		ProverAddress:   addr,
		Signature:       sig,
		Payload:         result,
	}, nil
}

// Verify recomputes a.Payload's hash (catching a payload edited without
// re-signing), then recovers the signer's address from a.Signature over
// a.ResultHash and reports whether it matches a.ProverAddress.
func Verify(a *Attestation) (bool, error) {
	hash, err := HashResult(a.Payload)
	if err != nil {
		return false, err
	}
	if hash != a.ResultHash {
		return false, nil
	}

	var r, s [32]byte
	copy(r[:], a.Signature[0:32])
	copy(s[:], a.Signature[32:64])
	v := a.Signature[64]
	recovered, err := ethcrypto.Recover(v, r, s, a.ResultHash)
	if err != nil {
		return false, err
	}
	return recovered == a.ProverAddress, nil
}

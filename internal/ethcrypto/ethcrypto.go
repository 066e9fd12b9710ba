// SPDX-License-Identifier: AGPL-3.0

// Package ethcrypto is the small secp256k1 sliver this engine needs for
// Ethereum-shaped address derivation and ECDSA signing: the addr()/sign()
// cheatcodes and the attestation signer both reduce to "private key in,
// Ethereum address or signature out". Grounded on
// wyf-ACCEPT-eth2030/pkg/crypto/signature_recovery.go's compact-signature
// and address-derivation conventions, reimplemented against
// btcsuite/btcd/btcec/v2 since that recovery file itself leans on an
// unavailable internal crypto package for the low-level curve operations.
package ethcrypto

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/state"
)

var ErrInvalidPrivateKey = errors.New("ethcrypto: private key out of range")

func keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func privKeyFromBig(priv *big.Int) (*btcec.PrivateKey, error) {
	if priv.Sign() <= 0 || priv.Cmp(btcec.S256().N) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	b := priv.Bytes()
	var padded [32]byte
	copy(padded[32-len(b):], b)
	key, _ := btcec.PrivKeyFromBytes(padded[:])
	return key, nil
}

// AddressFromPrivateKey derives the Ethereum-style address (the low 20
// bytes of keccak256 of the uncompressed public key) for priv.
func AddressFromPrivateKey(priv *big.Int) (state.Address160, error) {
	key, err := privKeyFromBig(priv)
	if err != nil {
		return state.Address160{}, err
	}
	return PubkeyToAddress(key.PubKey()), nil
}

// PubkeyToAddress renders the Ethereum address for an uncompressed
// secp256k1 public key.
func PubkeyToAddress(pub *btcec.PublicKey) state.Address160 {
	uncompressed := pub.SerializeUncompressed()
	h := keccak256(uncompressed[1:])
	var out state.Address160
	copy(out[:], h[12:])
	return out
}

// Sign produces an Ethereum-style (v, r, s) signature over digest, with v
// in the legacy {27,28} range so it round-trips through ecrecover/the
// ecrecover precompile unchanged.
func Sign(priv *big.Int, digest [32]byte) (v byte, r, s [32]byte, err error) {
	key, err := privKeyFromBig(priv)
	if err != nil {
		return 0, r, s, err
	}
	sig := btcecdsa.SignCompact(key, digest[:], false)
	v = sig[0]
	copy(r[:], sig[1:33])
	copy(s[:], sig[33:65])
	return v, r, s, nil
}

// Recover recovers the signer's address from a legacy-encoded (v,r,s)
// signature over hash, for the ecrecover precompile and attestation
// verification.
func Recover(v byte, r, s [32]byte, hash [32]byte) (state.Address160, error) {
	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:33], r[:])
	copy(compact[33:65], s[:])
	pub, _, err := btcecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return state.Address160{}, err
	}
	return PubkeyToAddress(pub), nil
}

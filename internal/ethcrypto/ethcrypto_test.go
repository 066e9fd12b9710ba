package ethcrypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPrivKey(t *testing.T) *big.Int {
	t.Helper()
	// An arbitrary but fixed nonzero scalar below secp256k1's group order.
	k, ok := new(big.Int).SetString("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362", 16)
	require.True(t, ok)
	return k
}

func TestSignRecoverRoundTrip(t *testing.T) {
	priv := testPrivKey(t)
	addr, err := AddressFromPrivateKey(priv)
	require.NoError(t, err)

	var digest [32]byte
	copy(digest[:], []byte("deadbeefdeadbeefdeadbeefdeadbeef"))

	v, r, s, err := Sign(priv, digest)
	require.NoError(t, err)

	recovered, err := Recover(v, r, s, digest)
	require.NoError(t, err)
	require.Equal(t, addr, recovered)
}

func TestSignRejectsInvalidPrivateKey(t *testing.T) {
	_, _, _, err := Sign(big.NewInt(0), [32]byte{})
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestRecoverFailsOnTamperedDigest(t *testing.T) {
	priv := testPrivKey(t)
	addr, err := AddressFromPrivateKey(priv)
	require.NoError(t, err)

	var digest, tampered [32]byte
	copy(digest[:], []byte("deadbeefdeadbeefdeadbeefdeadbeef"))
	copy(tampered[:], []byte("00000000deadbeefdeadbeefdeadbeef"))

	v, r, s, err := Sign(priv, digest)
	require.NoError(t, err)

	recovered, err := Recover(v, r, s, tampered)
	require.NoError(t, err)
	require.NotEqual(t, addr, recovered)
}

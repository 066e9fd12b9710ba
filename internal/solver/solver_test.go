// SPDX-License-Identifier: AGPL-3.0

package solver

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

func TestCanonicalKeyPreservesOrder(t *testing.T) {
	a := symir.NewCmp(symir.OpUlt, symir.NewVar("x", 256), symir.NewConst(big.NewInt(10), 256))
	b := symir.NewCmp(symir.OpUlt, symir.NewVar("y", 256), symir.NewConst(big.NewInt(20), 256))

	ab := canonicalKey([]*symir.Expr{a, b})
	ba := canonicalKey([]*symir.Expr{b, a})

	// Path-condition order is part of the query identity: the cache must
	// not conflate [a,b] with [b,a].
	require.NotEqual(t, ab, ba)
	require.Equal(t, ab, canonicalKey([]*symir.Expr{a, b}))
}

func TestCanonicalKeyEmpty(t *testing.T) {
	require.Equal(t, "", canonicalKey(nil))
}

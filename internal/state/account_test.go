package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
)

func TestStorageLoadDefaultsToZero(t *testing.T) {
	s := NewStorage()
	v := s.Load(bitvec.FromU64(7, 256))
	require.True(t, v.IsConcrete())
	require.Equal(t, int64(0), v.AsBigInt().Int64())
}

func TestStorageStoreDoesNotMutateReceiver(t *testing.T) {
	s0 := NewStorage()
	s1 := s0.Store(bitvec.FromU64(1, 256), bitvec.FromU64(42, 256))

	require.Equal(t, int64(0), s0.Load(bitvec.FromU64(1, 256)).AsBigInt().Int64())
	require.Equal(t, int64(42), s1.Load(bitvec.FromU64(1, 256)).AsBigInt().Int64())
}

func TestStorageHasSymbolicKeys(t *testing.T) {
	s := NewStorage()
	require.False(t, s.HasSymbolicKeys())
	s = s.Store(bitvec.FromU64(1, 256), bitvec.FromU64(2, 256))
	require.False(t, s.HasSymbolicKeys())
}

func TestWorldGetCreatesZeroAccount(t *testing.T) {
	w := NewWorld()
	addr := Address160{1}
	require.False(t, w.Exists(addr))

	acc := w.Get(addr)
	require.True(t, w.Exists(addr))
	require.Equal(t, int64(0), acc.Balance.AsBigInt().Int64())
}

func TestWorldSnapshotIsCopyOnWrite(t *testing.T) {
	w := NewWorld()
	addr := Address160{2}
	acc := w.Get(addr)
	acc.Balance = bitvec.FromU64(100, 256)
	w.Set(acc)

	snap := w.Snapshot()
	cloned := snap.Get(addr).Clone()
	cloned.Balance = bitvec.FromU64(5, 256)
	snap.Set(cloned)

	require.Equal(t, int64(100), w.Get(addr).Balance.AsBigInt().Int64())
	require.Equal(t, int64(5), snap.Get(addr).Balance.AsBigInt().Int64())
}

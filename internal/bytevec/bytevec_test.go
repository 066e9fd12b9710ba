package bytevec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
)

func TestReadWordZeroPadsShortReads(t *testing.T) {
	v := FromBytes([]byte{0x01, 0x02})
	word := v.ReadWord(0)
	require.True(t, word.IsConcrete())
	require.Equal(t, uint(256), word.Width())
	bs := word.Bytes32()
	require.Equal(t, byte(0x01), bs[0])
	require.Equal(t, byte(0x02), bs[1])
	for i := 2; i < 32; i++ {
		require.Equal(t, byte(0), bs[i])
	}
}

func TestReadPastEndReturnsZero(t *testing.T) {
	v := Empty()
	word := v.ReadWord(100)
	require.True(t, word.IsConcrete())
	require.True(t, word.IsZero())
}

func TestWriteWordExpandsMemory(t *testing.T) {
	v := Empty()
	v = v.WriteWord(0, bitvec.FromU64(0xdeadbeef, 256))
	require.Equal(t, 32, v.Len())
	got := v.ReadWord(0)
	require.Equal(t, uint64(0xdeadbeef), got.AsBigInt().Uint64())
}

func TestConcatLength(t *testing.T) {
	a := FromBytes([]byte{1, 2, 3})
	b := FromBytes([]byte{4, 5})
	c := Concat(a, b)
	require.Equal(t, 5, c.Len())
	bs, ok := c.ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, bs)
}

func TestSliceOfConcreteWord(t *testing.T) {
	v := Empty()
	v = v.WriteWord(0, bitvec.FromU64(1, 256))
	sliced := v.Slice(28, 4)
	bs, ok := sliced.ConcreteBytes()
	require.True(t, ok)
	require.Equal(t, []byte{0, 0, 0, 1}, bs)
}

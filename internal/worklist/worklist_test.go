package worklist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLIFOOrder(t *testing.T) {
	w := New[int]()
	w.Push(1)
	w.Push(2)
	w.Push(3)

	v, ok := w.Pop()
	require.True(t, ok)
	require.Equal(t, 3, v)

	v, ok = w.Pop()
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = w.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = w.Pop()
	require.False(t, ok)
}

func TestCompletedCounter(t *testing.T) {
	w := New[int]()
	require.Equal(t, 0, w.CompletedCount())
	w.MarkCompleted()
	w.MarkCompleted()
	require.Equal(t, 2, w.CompletedCount())
}

func TestClear(t *testing.T) {
	w := New[int]()
	w.Push(1)
	w.Push(2)
	w.Clear()
	require.True(t, w.IsEmpty())
	require.Equal(t, 0, w.Len())
}

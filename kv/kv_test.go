package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestHolder(t *testing.T) *Holder {
	t.Helper()
	h, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestTreeSetGetDelete(t *testing.T) {
	h := openTestHolder(t)
	tr := h.Tree(PrefixVertex)

	_, err := tr.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, tr.Set([]byte("a"), []byte("1")))
	v, err := tr.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	ok, err := tr.Exists([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, tr.Delete([]byte("a")))
	ok, err = tr.Exists([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTreesAreIndependentKeyspaces(t *testing.T) {
	h := openTestHolder(t)
	vertices := h.Tree(PrefixVertex)
	edges := h.Tree(PrefixEdge)

	require.NoError(t, vertices.Set([]byte("x"), []byte("vertex")))
	_, err := edges.Get([]byte("x"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestScanPrefixOrdering(t *testing.T) {
	h := openTestHolder(t)
	tr := h.Tree(PrefixVertexProperty)

	keys := [][]byte{{0x00, 0x01}, {0x00, 0x02}, {0x01, 0x00}}
	for _, k := range keys {
		require.NoError(t, tr.Set(k, []byte("v")))
	}

	var seen [][]byte
	err := tr.ScanPrefix([]byte{0x00}, false, func(it Item) (bool, error) {
		seen = append(seen, it.Key)
		return true, nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
}

func TestScanRangeHasNoUpperBound(t *testing.T) {
	h := openTestHolder(t)
	tr := h.Tree(PrefixVertex)

	require.NoError(t, tr.Set([]byte{0x05}, []byte("a")))
	require.NoError(t, tr.Set([]byte{0x10}, []byte("b")))

	var seen int
	err := tr.ScanRange([]byte{0x05}, false, func(it Item) (bool, error) {
		seen++
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
}

func TestBatchAppliesAtomically(t *testing.T) {
	h := openTestHolder(t)
	tr := h.Tree(PrefixEdge)

	b := tr.NewBatch()
	b.Set([]byte("a"), []byte("1"))
	b.Set([]byte("b"), []byte("2"))
	require.NoError(t, b.Apply())

	v, err := tr.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)
	v, err = tr.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)
}

func TestCount(t *testing.T) {
	h := openTestHolder(t)
	tr := h.Tree(PrefixVertex)
	require.NoError(t, tr.Set([]byte("a"), []byte("1")))
	require.NoError(t, tr.Set([]byte("b"), []byte("2")))
	n, err := tr.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
}

func TestOperationsAfterCloseReturnErrClosed(t *testing.T) {
	h, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	tr := h.Tree(PrefixVertex)
	b := tr.NewBatch()
	b.Set([]byte("a"), []byte("1"))

	require.NoError(t, h.Close())

	_, err = tr.Get([]byte("a"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, tr.Set([]byte("a"), []byte("1")), ErrClosed)
	require.ErrorIs(t, tr.Delete([]byte("a")), ErrClosed)
	_, err = tr.Count()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, tr.ScanPrefix(nil, false, func(Item) (bool, error) { return true, nil }), ErrClosed)
	require.ErrorIs(t, tr.ScanRange(nil, false, func(Item) (bool, error) { return true, nil }), ErrClosed)
	require.ErrorIs(t, b.Apply(), ErrClosed)
	require.ErrorIs(t, h.Sync(), ErrClosed)
}

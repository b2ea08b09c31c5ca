package shuffle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wordcount/mapreduce/types"
)

func pairsOf(words ...string) []types.Pair {
	pairs := make([]types.Pair, 0, len(words))
	for _, w := range words {
		pairs = append(pairs, types.Pair{Word: w, Count: 1})
	}
	return pairs
}

func collect(t *testing.T, s Stream) []types.Pair {
	t.Helper()
	var out []types.Pair
	for s.Next() {
		out = append(out, s.Pair())
	}
	require.NoError(t, s.Err())
	return out
}

func TestSort(t *testing.T) {
	pairs := pairsOf("the", "cat", "sat", "the", "dog", "sat", "cat", "cat")
	got := Sort(pairs)
	require.Equal(t, pairsOf("cat", "cat", "cat", "dog", "sat", "sat", "the", "the"), got)
	require.True(t, IsSorted(got))
}

func TestSortByteOrder(t *testing.T) {
	got := Sort(pairsOf("b", "ab", "a", "aa", "ba"))
	require.Equal(t, pairsOf("a", "aa", "ab", "b", "ba"), got)
}

func TestSorterInMemory(t *testing.T) {
	s := &Sorter{}
	stream, err := s.Sort(context.Background(), pairsOf("b", "a", "c", "a"))
	require.NoError(t, err)
	defer stream.Close()
	require.Equal(t, pairsOf("a", "a", "b", "c"), collect(t, stream))
	require.False(t, stream.Next())
}

func TestFromSliceEmpty(t *testing.T) {
	stream := FromSlice(nil)
	require.False(t, stream.Next())
	require.NoError(t, stream.Err())
	require.NoError(t, stream.Close())
}

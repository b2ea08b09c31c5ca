// Package shuffle orders mapper output by word so that equal words become
// contiguous. The reducer relies on that contiguity; any replacement sort
// must keep ordering by Compare.
package shuffle

import (
	"cmp"
	"slices"

	"wordcount/mapreduce/types"
)

// Compare orders pairs by word, byte-wise.
func Compare(a, b types.Pair) int {
	return cmp.Compare(a.Word, b.Word)
}

// Sort sorts pairs in place by word and returns them.
func Sort(pairs []types.Pair) []types.Pair {
	slices.SortFunc(pairs, Compare)
	return pairs
}

// IsSorted reports whether pairs are ordered by word.
func IsSorted(pairs []types.Pair) bool {
	return slices.IsSortedFunc(pairs, Compare)
}

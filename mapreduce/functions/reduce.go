package functions

import (
	"errors"
	"fmt"
	"math"

	"wordcount/mapreduce/shuffle"
	"wordcount/mapreduce/types"
)

var (
	// ErrUnsorted means the reducer input was not grouped by word; summing
	// it would silently split groups.
	ErrUnsorted = errors.New("reducer input is not sorted by word")
	ErrBadCount = errors.New("pair count must be positive")
	ErrOverflow = errors.New("word count overflows int64")
)

// Reduce sums the counts of each run of equal words in sorted and emits one
// pair per distinct word, in input order.
func Reduce(sorted []types.Pair) ([]types.Pair, error) {
	return ReduceStream(shuffle.FromSlice(sorted))
}

// ReduceStream is Reduce over a Stream. It does not close s.
func ReduceStream(s shuffle.Stream) ([]types.Pair, error) {
	var (
		out     []types.Pair
		current types.Pair
		started bool
	)
	for s.Next() {
		p := s.Pair()
		if p.Count < 1 {
			return nil, fmt.Errorf("%w: %q has count %d", ErrBadCount, p.Word, p.Count)
		}
		if started && p.Word == current.Word {
			if current.Count > math.MaxInt64-p.Count {
				return nil, fmt.Errorf("%w: %q", ErrOverflow, p.Word)
			}
			current.Count += p.Count
			continue
		}
		if started {
			if p.Word < current.Word {
				return nil, fmt.Errorf("%w: %q after %q", ErrUnsorted, p.Word, current.Word)
			}
			out = append(out, current)
		}
		current = p
		started = true
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if started {
		out = append(out, current)
	}
	return out, nil
}

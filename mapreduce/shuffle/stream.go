package shuffle

import "wordcount/mapreduce/types"

// Stream iterates over sorted pairs.
//
//	for s.Next() {
//		p := s.Pair()
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	Next() bool
	Pair() types.Pair
	Err() error
	Close() error
}

type sliceStream struct {
	pairs []types.Pair
	pos   int
}

// FromSlice returns a Stream over pairs, which must already be sorted.
func FromSlice(pairs []types.Pair) Stream {
	return &sliceStream{pairs: pairs, pos: -1}
}

func (s *sliceStream) Next() bool {
	if s.pos+1 >= len(s.pairs) {
		s.pos = len(s.pairs)
		return false
	}
	s.pos++
	return true
}

func (s *sliceStream) Pair() types.Pair {
	return s.pairs[s.pos]
}

func (s *sliceStream) Err() error   { return nil }
func (s *sliceStream) Close() error { return nil }

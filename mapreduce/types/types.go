package types

// Pair is a word and the number of times it was seen. The mapper emits
// Count == 1; the reducer sums the counts of equal words.
type Pair struct {
	Word  string
	Count int64
}

// Stage is a state of a single job run.
type Stage uint8

const (
	StageInit Stage = iota
	StageLoading
	StageMapping
	StageSorting
	StageReducing
	StageWriting
	StageMarked
	StageFailed
)

var stageNames = [...]string{
	StageInit:     "INIT",
	StageLoading:  "LOADING",
	StageMapping:  "MAPPING",
	StageSorting:  "SORTING",
	StageReducing: "REDUCING",
	StageWriting:  "WRITING",
	StageMarked:   "MARKED",
	StageFailed:   "FAILED",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "UNKNOWN"
}

// Next returns the stage that follows s on a successful run.
// MARKED and FAILED are terminal and return themselves.
func (s Stage) Next() Stage {
	if s >= StageMarked {
		return s
	}
	return s + 1
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageMarked || s == StageFailed
}

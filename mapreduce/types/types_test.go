package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStageTransitions(t *testing.T) {
	var path []string
	for s := StageInit; !s.Terminal(); s = s.Next() {
		path = append(path, s.String())
	}
	require.Equal(t, []string{"INIT", "LOADING", "MAPPING", "SORTING", "REDUCING", "WRITING"}, path)
	require.Equal(t, StageMarked, StageMarked.Next())
	require.Equal(t, StageFailed, StageFailed.Next())
	require.Equal(t, "UNKNOWN", Stage(42).String())
}

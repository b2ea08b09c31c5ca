package functions

import (
	"context"
	"fmt"

	"wordcount/mapreduce/input"
	"wordcount/mapreduce/types"
	"wordcount/taskmgr"
)

// MapLine maps every token of line to (token, 1).
func MapLine(line string) []types.Pair {
	words := Tokenize(line)
	pairs := make([]types.Pair, 0, len(words))
	for _, w := range words {
		pairs = append(pairs, types.Pair{Word: w, Count: 1})
	}
	return pairs
}

// Map maps lines in order. Duplicate words are kept as separate pairs.
func Map(lines []string) []types.Pair {
	var pairs []types.Pair
	for _, line := range lines {
		pairs = append(pairs, MapLine(line)...)
	}
	return pairs
}

type mapTask struct {
	index int
	file  input.File
}

// MapFiles maps files with up to workers goroutines. The result is in file
// order, then line order, the same as Map over all lines.
func MapFiles(ctx context.Context, files []input.File, workers int) ([]types.Pair, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([][]types.Pair, len(files))
	mgr := taskmgr.NewTaskManager(func(ctx context.Context, task mapTask) error {
		pairs := Map(task.file.Lines())
		results[task.index] = pairs
		return nil
	})
	for i, f := range files {
		mgr.AddTask(fmt.Sprintf("worker-%d", i%workers), mapTask{index: i, file: f})
	}
	if err := mgr.Run(ctx); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	pairs := make([]types.Pair, 0, total)
	for _, r := range results {
		pairs = append(pairs, r...)
	}
	return pairs, nil
}

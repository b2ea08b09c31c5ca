package taskmgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunKeepsOrderPerKey(t *testing.T) {
	type keyedTask struct {
		key   string
		index int
	}
	var mutex sync.Mutex
	seen := make(map[string][]int)
	mgr := NewTaskManager(func(ctx context.Context, task keyedTask) error {
		mutex.Lock()
		defer mutex.Unlock()
		seen[task.key] = append(seen[task.key], task.index)
		return nil
	})
	for i := 0; i < 12; i++ {
		key := fmt.Sprintf("worker-%d", i%3)
		mgr.AddTask(key, keyedTask{key: key, index: i})
	}
	require.Equal(t, 12, mgr.Len())

	require.NoError(t, mgr.Run(context.Background()))
	require.Equal(t, map[string][]int{
		"worker-0": {0, 3, 6, 9},
		"worker-1": {1, 4, 7, 10},
		"worker-2": {2, 5, 8, 11},
	}, seen)
	require.Zero(t, mgr.Len())
}

func TestRunJoinsErrors(t *testing.T) {
	errOdd := errors.New("odd task")
	mgr := NewTaskManager(func(ctx context.Context, task int) error {
		if task%2 == 1 {
			return fmt.Errorf("task %d: %w", task, errOdd)
		}
		return nil
	})
	for i := 0; i < 4; i++ {
		mgr.AddTask("only", i)
	}
	err := mgr.Run(context.Background())
	require.ErrorIs(t, err, errOdd)
	require.Contains(t, err.Error(), "task 1")
	require.Contains(t, err.Error(), "task 3")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	mgr := NewTaskManager(func(ctx context.Context, task int) error {
		ran++
		cancel()
		return nil
	})
	for i := 0; i < 5; i++ {
		mgr.AddTask("only", i)
	}
	err := mgr.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, ran)
}

func TestRunEmpty(t *testing.T) {
	mgr := NewTaskManager(func(context.Context, int) error { return nil })
	require.NoError(t, mgr.Run(context.Background()))
}

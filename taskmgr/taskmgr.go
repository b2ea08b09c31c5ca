// Package taskmgr runs queued tasks grouped by key: tasks sharing a key run
// one after another, different keys run concurrently.
package taskmgr

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

// HandlerFunc handles one task.
type HandlerFunc[T any] func(ctx context.Context, task T) error

type queue struct {
	tasks list.List
}

type TaskManager[T any] struct {
	mutex   sync.Mutex
	queues  map[string]*queue
	order   []string
	handler HandlerFunc[T]
}

func NewTaskManager[T any](handler HandlerFunc[T]) *TaskManager[T] {
	return &TaskManager[T]{
		queues:  make(map[string]*queue),
		handler: handler,
	}
}

// AddTask queues task under key.
func (t *TaskManager[T]) AddTask(key string, task T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	q, ok := t.queues[key]
	if !ok {
		q = &queue{}
		t.queues[key] = q
		t.order = append(t.order, key)
	}
	q.tasks.PushBack(task)
}

// Len returns the number of queued tasks.
func (t *TaskManager[T]) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	n := 0
	for _, q := range t.queues {
		n += q.tasks.Len()
	}
	return n
}

func (t *TaskManager[T]) pop(key string) (task T, ok bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	q := t.queues[key]
	if q.tasks.Len() == 0 {
		return task, false
	}
	return q.tasks.Remove(q.tasks.Front()).(T), true
}

// runQueue drains the queue of key. A failed task does not stop the queue
// unless ctx is cancelled.
func (t *TaskManager[T]) runQueue(ctx context.Context, key string, sendError func(error)) {
	for {
		if err := ctx.Err(); err != nil {
			sendError(err)
			return
		}
		task, ok := t.pop(key)
		if !ok {
			return
		}
		sendError(t.handler(ctx, task))
	}
}

// Run drains every queue and returns the joined errors of all tasks.
func (t *TaskManager[T]) Run(ctx context.Context) error {
	var (
		errMutex sync.Mutex
		errs     []error
		wg       sync.WaitGroup
	)
	sendError := func(err error) {
		if err == nil {
			return
		}
		errMutex.Lock()
		errs = append(errs, err)
		errMutex.Unlock()
	}
	t.mutex.Lock()
	keys := append([]string(nil), t.order...)
	t.mutex.Unlock()
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.runQueue(ctx, key, sendError)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

package taskqueue

import (
	"context"
	"sync"
	"time"

	"github.com/vuthanhlam/quizbank/internal/model"
)

// MemoryStore is the in-process backend for both contracts. Progress lives
// in a sync.Map so unrelated tasks' updates do not serialize on one lock;
// per-key Update atomicity comes from a per-task mutex held only for the
// read-modify-write. Records survive for the process lifetime; TTL is
// ignored.
type MemoryStore struct {
	progress sync.Map // taskID -> *model.GenerationTask
	locks    sync.Map // taskID -> *sync.Mutex

	queueMu sync.Mutex
	order   []string
	pending map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]Item)}
}

func (m *MemoryStore) Enqueue(_ context.Context, item Item) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	m.order = append(m.order, item.TaskID)
	m.pending[item.TaskID] = item
	return nil
}

func (m *MemoryStore) Dequeue(_ context.Context) (*Item, error) {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	for len(m.order) > 0 {
		taskID := m.order[0]
		m.order = m.order[1:]
		if item, ok := m.pending[taskID]; ok {
			return &item, nil
		}
		// Payload already completed or dropped; skip the stale id.
	}
	return nil, nil
}

func (m *MemoryStore) CompleteTask(_ context.Context, taskID string) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	delete(m.pending, taskID)
	return nil
}

func (m *MemoryStore) QueueLength(_ context.Context) (int64, error) {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	return int64(len(m.order)), nil
}

func (m *MemoryStore) Get(_ context.Context, taskID string) (*model.GenerationTask, error) {
	v, ok := m.progress.Load(taskID)
	if !ok {
		return nil, nil
	}
	return v.(*model.GenerationTask).Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, taskID string, task *model.GenerationTask, _ time.Duration) error {
	m.progress.Store(taskID, task.Clone())
	return nil
}

func (m *MemoryStore) Update(_ context.Context, taskID string, mutate func(*model.GenerationTask)) error {
	mu := m.taskLock(taskID)
	mu.Lock()
	defer mu.Unlock()
	v, ok := m.progress.Load(taskID)
	if !ok {
		return nil
	}
	cp := v.(*model.GenerationTask).Clone()
	mutate(cp)
	m.progress.Store(taskID, cp)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, taskID string) error {
	m.progress.Delete(taskID)
	m.locks.Delete(taskID)
	return nil
}

func (m *MemoryStore) taskLock(taskID string) *sync.Mutex {
	v, _ := m.locks.LoadOrStore(taskID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

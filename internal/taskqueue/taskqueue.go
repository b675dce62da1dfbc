// Package taskqueue decouples async generation submission from execution.
// Two interchangeable backends implement the same contracts: an in-process
// one for single-instance deployments and a Redis one for durability
// across restarts.
package taskqueue

import (
	"context"
	"time"

	"github.com/vuthanhlam/quizbank/internal/model"
)

// Item is one queued unit of work: the task identity plus the immutable
// request payload the worker needs to execute it.
type Item struct {
	TaskID  string                  `json:"task_id"`
	OwnerID uint                    `json:"owner_id"`
	Request model.GenerationRequest `json:"request"`
}

// Queue is a FIFO of pending generation tasks. The payload survives until
// CompleteTask so a consumer crash can re-enqueue safely (at-least-once).
// FIFO order holds under a single consumer; concurrent consumers would
// need a distributed lock this design does not provide.
type Queue interface {
	Enqueue(ctx context.Context, item Item) error
	// Dequeue returns nil when the queue is empty.
	Dequeue(ctx context.Context) (*Item, error)
	CompleteTask(ctx context.Context, taskID string) error
	QueueLength(ctx context.Context) (int64, error)
}

// ProgressStore tracks per-task progress records. All mutation goes
// through Update so concurrent read-modify-writes on the same key are
// observed atomically.
type ProgressStore interface {
	// Get returns nil when no record exists.
	Get(ctx context.Context, taskID string) (*model.GenerationTask, error)
	Set(ctx context.Context, taskID string, task *model.GenerationTask, ttl time.Duration) error
	Update(ctx context.Context, taskID string, mutate func(*model.GenerationTask)) error
	Remove(ctx context.Context, taskID string) error
}

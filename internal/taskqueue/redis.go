package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/model"
)

const (
	queueKey          = "quizbank:gen:queue"
	payloadKeyPrefix  = "quizbank:gen:payload:"
	progressKeyPrefix = "quizbank:gen:progress:"
)

// RedisStore is the distributed backend. Progress records are TTL'd JSON
// values; the queue is a list pushed at the head and popped from the tail
// (FIFO under the single-consumer assumption). The payload key is removed
// only on CompleteTask, so a crashed consumer leaves it behind for a safe
// re-enqueue.
type RedisStore struct {
	client     *redis.Client
	payloadTTL time.Duration
}

func NewRedisStore(client *redis.Client, payloadTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, payloadTTL: payloadTTL}
}

func (r *RedisStore) Enqueue(ctx context.Context, item Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal queue item: %w", err)
	}
	if err := r.client.Set(ctx, payloadKeyPrefix+item.TaskID, raw, r.payloadTTL).Err(); err != nil {
		return fmt.Errorf("store task payload: %w", err)
	}
	if err := r.client.LPush(ctx, queueKey, item.TaskID).Err(); err != nil {
		return fmt.Errorf("push task id: %w", err)
	}
	return nil
}

func (r *RedisStore) Dequeue(ctx context.Context) (*Item, error) {
	for {
		taskID, err := r.client.RPop(ctx, queueKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("pop task id: %w", err)
		}

		raw, err := r.client.Get(ctx, payloadKeyPrefix+taskID).Bytes()
		if errors.Is(err, redis.Nil) {
			// Payload expired or already completed; drop the id.
			log.Warn().Str("taskID", taskID).Msg("Dequeued task id without payload, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load task payload: %w", err)
		}

		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode task payload: %w", err)
		}
		return &item, nil
	}
}

func (r *RedisStore) CompleteTask(ctx context.Context, taskID string) error {
	return r.client.Del(ctx, payloadKeyPrefix+taskID).Err()
}

func (r *RedisStore) QueueLength(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, queueKey).Result()
}

func (r *RedisStore) Get(ctx context.Context, taskID string) (*model.GenerationTask, error) {
	raw, err := r.client.Get(ctx, progressKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var task model.GenerationTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &task, nil
}

func (r *RedisStore) Set(ctx context.Context, taskID string, task *model.GenerationTask, ttl time.Duration) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return r.client.Set(ctx, progressKeyPrefix+taskID, raw, ttl).Err()
}

// Update is a plain read-modify-write. A single worker owns each in-flight
// task, so key-level contention does not occur in practice.
func (r *RedisStore) Update(ctx context.Context, taskID string, mutate func(*model.GenerationTask)) error {
	task, err := r.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	mutate(task)

	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return r.client.Set(ctx, progressKeyPrefix+taskID, raw, redis.KeepTTL).Err()
}

func (r *RedisStore) Remove(ctx context.Context, taskID string) error {
	return r.client.Del(ctx, progressKeyPrefix+taskID).Err()
}

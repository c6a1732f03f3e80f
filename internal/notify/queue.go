package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const (
	KindOrderCreated = "order_created"

	queueKey      = "notifications:pending"
	deadLetterKey = "notifications:dead"
)

var ErrQueueFull = errors.New("notification queue is full")

// Task is one delivery of one event over one channel.
type Task struct {
	ID         string       `json:"id"`
	Kind       string       `json:"kind"`
	Channel    string       `json:"channel"`
	Order      models.Order `json:"order"`
	Attempts   int          `json:"attempts"`
	EnqueuedAt time.Time    `json:"enqueuedAt"`
	LastError  string       `json:"lastError,omitempty"`
}

func NewOrderTask(channel string, order models.Order) Task {
	return Task{
		ID:         uuid.NewString(),
		Kind:       KindOrderCreated,
		Channel:    channel,
		Order:      order,
		EnqueuedAt: time.Now().UTC(),
	}
}

type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (Task, error)
	// Bury parks a task that exhausted its attempts.
	Bury(ctx context.Context, t Task) error
}

// MemoryQueue is a bounded in-process queue. Tasks are lost on restart.
type MemoryQueue struct {
	ch     chan Task
	mu     sync.Mutex
	buried []Task
}

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{ch: make(chan Task, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, t Task) error {
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case t := <-q.ch:
		return t, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

func (q *MemoryQueue) Bury(_ context.Context, t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buried = append(q.buried, t)
	zap.L().Error("notification buried", zap.String("task_id", t.ID), zap.String("channel", t.Channel),
		zap.String("order_id", t.Order.OrderID), zap.Int("attempts", t.Attempts), zap.String("last_error", t.LastError))
	return nil
}

// Buried returns a copy of the dead-lettered tasks.
func (q *MemoryQueue) Buried() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Task{}, q.buried...)
}

// RedisQueue keeps pending tasks in a Redis list so they survive a restart
// of this process.
type RedisQueue struct {
	rdb  *redis.Client
	poll time.Duration
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, poll: 5 * time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return errors.Wrap(q.rdb.LPush(ctx, queueKey, data).Err(), "redis enqueue")
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		res, err := q.rdb.BRPop(ctx, q.poll, queueKey).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return Task{}, ctx.Err()
			}
			return Task{}, errors.Wrap(err, "redis dequeue")
		}
		var t Task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			zap.L().Error("dropping undecodable notification", zap.String("payload", res[1]), zap.Error(err))
			continue
		}
		return t, nil
	}
}

func (q *RedisQueue) Bury(ctx context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return errors.Wrap(q.rdb.LPush(ctx, deadLetterKey, data).Err(), "redis bury")
}

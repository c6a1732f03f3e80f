package notify

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

// Sender delivers a task over one channel (email, live feed, ...).
type Sender interface {
	Channel() string
	Send(ctx context.Context, t Task) error
}

// Notifier is the request-side half: it only enqueues. A failed enqueue is
// logged and the notification is dropped.
type Notifier struct {
	queue    Queue
	channels []string
}

func NewNotifier(queue Queue, senders ...Sender) *Notifier {
	n := &Notifier{queue: queue}
	for _, s := range senders {
		n.channels = append(n.channels, s.Channel())
	}
	return n
}

func (n *Notifier) OrderCreated(ctx context.Context, order models.Order) {
	if n == nil {
		return
	}
	for _, channel := range n.channels {
		t := NewOrderTask(channel, order)
		if err := n.queue.Enqueue(ctx, t); err != nil {
			zap.L().Error("❌ notification dropped", zap.String("channel", channel),
				zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}
}

type WorkerOptions struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
}

// Worker drains the queue on an ants pool. Each task is retried with
// exponential backoff and buried once it runs out of attempts.
type Worker struct {
	queue   Queue
	senders map[string]Sender
	opts    WorkerOptions
	pool    *ants.Pool
	wg      sync.WaitGroup
}

func NewWorker(queue Queue, opts WorkerOptions, senders ...Sender) (*Worker, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "notification pool")
	}
	w := &Worker{queue: queue, senders: map[string]Sender{}, opts: opts, pool: pool}
	for _, s := range senders {
		w.senders[s.Channel()] = s
	}
	return w, nil
}

// Run blocks until ctx is cancelled, then waits for in-flight tasks.
func (w *Worker) Run(ctx context.Context) {
	zap.S().Infow("📨 notification worker started", "workers", w.opts.Workers, "channels", len(w.senders))
	defer func() {
		w.wg.Wait()
		w.pool.Release()
		zap.S().Info("📨 notification worker stopped")
	}()

	for {
		t, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().Warn("notification dequeue failed", zap.Error(err))
			if !sleep(ctx, w.opts.Backoff) {
				return
			}
			continue
		}

		w.wg.Add(1)
		if err := w.pool.Submit(func() {
			defer w.wg.Done()
			w.Process(ctx, t)
		}); err != nil {
			w.wg.Done()
			zap.L().Error("notification pool rejected task", zap.String("task_id", t.ID), zap.Error(err))
			w.bury(ctx, t, err)
		}
	}
}

// Process delivers one task with retries. It never returns an error: the
// outcome is either delivered or buried.
func (w *Worker) Process(ctx context.Context, t Task) {
	sender, ok := w.senders[t.Channel]
	if !ok {
		w.bury(ctx, t, errors.Errorf("no sender for channel %q", t.Channel))
		return
	}

	delay := w.opts.Backoff
	for t.Attempts < w.opts.MaxAttempts {
		t.Attempts++
		err := sender.Send(ctx, t)
		if err == nil {
			zap.L().Info("✅ notification delivered", zap.String("channel", t.Channel),
				zap.String("order_id", t.Order.OrderID), zap.Int("attempt", t.Attempts))
			return
		}
		t.LastError = err.Error()
		zap.L().Warn("notification attempt failed", zap.String("channel", t.Channel),
			zap.String("order_id", t.Order.OrderID), zap.Int("attempt", t.Attempts), zap.Error(err))
		if t.Attempts >= w.opts.MaxAttempts || !sleep(ctx, delay) {
			break
		}
		delay *= 2
	}
	w.bury(ctx, t, errors.New(t.LastError))
}

func (w *Worker) bury(ctx context.Context, t Task, cause error) {
	if cause != nil {
		t.LastError = cause.Error()
	}
	// ctx may already be cancelled during shutdown
	if err := w.queue.Bury(context.WithoutCancel(ctx), t); err != nil {
		zap.L().Error("notification lost", zap.String("task_id", t.ID), zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

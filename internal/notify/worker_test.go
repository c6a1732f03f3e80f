package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

type flakySender struct {
	channel  string
	failures int

	mu    sync.Mutex
	calls int
	sent  []Task
}

func (s *flakySender) Channel() string { return s.channel }

func (s *flakySender) Send(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp: connection refused")
	}
	s.sent = append(s.sent, t)
	return nil
}

func (s *flakySender) count() (calls, sent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, len(s.sent)
}

func testOrder() models.Order {
	return models.Order{OrderID: "MYR-7", Name: "Sana", TotalAmount: 1200}
}

func TestProcessRetriesUntilDelivered(t *testing.T) {
	q := NewMemoryQueue(4)
	sender := &flakySender{channel: "email", failures: 2}
	w, err := NewWorker(q, WorkerOptions{Workers: 1, MaxAttempts: 5, Backoff: time.Millisecond}, sender)
	if err != nil {
		t.Fatal(err)
	}

	w.Process(context.Background(), NewOrderTask("email", testOrder()))

	calls, sent := sender.count()
	if calls != 3 || sent != 1 {
		t.Errorf("calls=%d sent=%d, want 3 and 1", calls, sent)
	}
	if len(q.Buried()) != 0 {
		t.Error("delivered task must not be buried")
	}
}

func TestProcessBuriesAfterMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(4)
	sender := &flakySender{channel: "email", failures: 100}
	w, err := NewWorker(q, WorkerOptions{Workers: 1, MaxAttempts: 3, Backoff: time.Millisecond}, sender)
	if err != nil {
		t.Fatal(err)
	}

	w.Process(context.Background(), NewOrderTask("email", testOrder()))

	if calls, _ := sender.count(); calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	buried := q.Buried()
	if len(buried) != 1 {
		t.Fatalf("buried = %d, want 1", len(buried))
	}
	if buried[0].Attempts != 3 || !strings.Contains(buried[0].LastError, "connection refused") {
		t.Errorf("unexpected buried task %+v", buried[0])
	}
}

func TestProcessBuriesUnknownChannel(t *testing.T) {
	q := NewMemoryQueue(1)
	w, err := NewWorker(q, WorkerOptions{Workers: 1}, &flakySender{channel: "email"})
	if err != nil {
		t.Fatal(err)
	}
	w.Process(context.Background(), NewOrderTask("sms", testOrder()))
	if len(q.Buried()) != 1 {
		t.Fatal("task for an unknown channel should be buried")
	}
}

func TestRunDeliversEnqueuedOrders(t *testing.T) {
	q := NewMemoryQueue(8)
	email := &flakySender{channel: "email"}
	live := &flakySender{channel: "live", failures: 1}
	w, err := NewWorker(q, WorkerOptions{Workers: 2, MaxAttempts: 3, Backoff: time.Millisecond}, email, live)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	NewNotifier(q, email, live).OrderCreated(ctx, testOrder())

	deadline := time.After(2 * time.Second)
	for {
		_, e := email.count()
		_, l := live.count()
		if e == 1 && l == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out: email=%d live=%d", e, l)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestNotifierDropsWhenQueueFull(t *testing.T) {
	q := NewMemoryQueue(1)
	n := NewNotifier(q, &flakySender{channel: "email"}, &flakySender{channel: "live"})

	// second channel does not fit; the call must still return normally
	n.OrderCreated(context.Background(), testOrder())

	if err := q.Enqueue(context.Background(), NewOrderTask("email", testOrder())); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected queue to be full, got %v", err)
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.OrderCreated(context.Background(), testOrder())
}

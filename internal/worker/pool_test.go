package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func sleepTask(d time.Duration, err error) Task[error] {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d):
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	p1 := NewPool[int](ctx, 5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}
	p1.Shutdown()

	p2 := NewPool[int](ctx, 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}
	p2.Shutdown()

	p3 := NewPool[int](ctx, -1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
	p3.Shutdown()
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool[int](context.Background(), 4)

	count := 20
	for i := 0; i < count; i++ {
		i := i
		index := pool.Submit(func(ctx context.Context) int {
			// Later tasks finish first
			time.Sleep(time.Duration(count-i) * time.Millisecond)
			return i * i
		})
		if index != i {
			t.Errorf("expected index %d, got %d", i, index)
		}
	}

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("result %d: expected %d, got %d", i, i*i, r)
		}
	}
}

func TestPool_ManyTasks(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)

	// Far more tasks than the queue holds
	count := 200
	for i := 0; i < count; i++ {
		pool.Submit(sleepTask(0, nil))
	}

	done := make(chan []error)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked with many tasks")
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool[struct{}](context.Background(), workers)

	var current, maxConcurrent, completed int32
	var mu sync.Mutex

	totalTasks := 50
	for i := 0; i < totalTasks; i++ {
		pool.Submit(func(ctx context.Context) struct{} {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			atomic.AddInt32(&current, -1)
			atomic.AddInt32(&completed, 1)
			return struct{}{}
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalTasks) {
		t.Errorf("expected %d completed tasks, got %d", totalTasks, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)

	pool.Submit(sleepTask(0, errors.New("task error")))
	pool.Submit(sleepTask(0, nil))

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] == nil {
		t.Error("expected first task to fail")
	}
	if results[1] != nil {
		t.Errorf("expected second task to succeed, got %v", results[1])
	}
}

func TestPool_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[error](ctx, 1)

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Submit(sleepTask(time.Hour, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after cancel blocked")
	}

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, err := range results {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("result %d: expected context.Canceled, got %v", i, err)
		}
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) error {
		close(started)
		return sleepTask(10*time.Second, nil)(ctx)
	})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown did not cancel the running task")
	}
}

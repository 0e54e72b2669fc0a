// Package worker runs extractions and endpoint probes concurrently and
// throttles queries per endpoint host.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work. It must return promptly once ctx is cancelled.
type Task[R any] func(ctx context.Context) R

type queued[R any] struct {
	index int
	task  Task[R]
}

// Pool runs tasks on a fixed number of workers. Results are kept in
// submission order, so callers never need to re-sort them.
type Pool[R any] struct {
	workers int
	queue   chan queued[R]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	results []R
}

// NewPool creates a pool and starts its workers. Tasks see a context derived
// from ctx that is cancelled by Shutdown.
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Pool[R]{
		workers: workers,
		queue:   make(chan queued[R], workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

func (p *Pool[R]) work() {
	defer p.wg.Done()
	for q := range p.queue {
		p.store(q.index, q.task(p.ctx))
	}
}

func (p *Pool[R]) store(index int, result R) {
	p.mu.Lock()
	p.results[index] = result
	p.mu.Unlock()
}

// Submit queues a task and returns its position in the results. Once the
// pool's context is done the task runs on the caller's goroutine with that
// context, so every submitted task still yields a result. Submit must not be
// called after Wait or Shutdown.
func (p *Pool[R]) Submit(task Task[R]) int {
	p.mu.Lock()
	index := len(p.results)
	var zero R
	p.results = append(p.results, zero)
	p.mu.Unlock()

	select {
	case p.queue <- queued[R]{index: index, task: task}:
	case <-p.ctx.Done():
		p.store(index, task(p.ctx))
	}
	return index
}

// Wait blocks until every submitted task has finished and returns the
// results in submission order
func (p *Pool[R]) Wait() []R {
	p.closeQueue()
	p.wg.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]R, len(p.results))
	copy(out, p.results)
	return out
}

// Shutdown cancels running tasks and waits for the workers to exit
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.closeQueue()
	p.wg.Wait()
}

func (p *Pool[R]) closeQueue() {
	p.once.Do(func() { close(p.queue) })
}

package utils

import (
	"context"
	"runtime"
	"sync"
)

const (
	MaxWorkers       = 32
	WorkerBufferSize = 4
)

// WorkerPool runs handler over submitted tasks. The first handler error
// cancels the pool; later tasks are dropped and Stop returns that error.
type WorkerPool[T any] struct {
	workers   int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan T
	handler   func(context.Context, T) error

	errOnce sync.Once
	err     error
}

func NewWorkerPool[T any](ctx context.Context, workers int, handler func(context.Context, T) error) *WorkerPool[T] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool[T]{
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan T, workers*WorkerBufferSize),
		handler:   handler,
	}
}

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool[T]) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			if err := p.handler(p.ctx, task); err != nil {
				p.fail(err)
				return
			}
		}
	}
}

func (p *WorkerPool[T]) fail(err error) {
	p.errOnce.Do(func() {
		p.err = err
		p.cancel()
	})
}

// Submit queues a task. It returns false once the pool has been cancelled.
func (p *WorkerPool[T]) Submit(task T) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.taskQueue <- task:
		return true
	}
}

// Stop waits for queued tasks and returns the first handler error, or the
// parent context's error if it was cancelled.
func (p *WorkerPool[T]) Stop() error {
	close(p.taskQueue)
	p.wg.Wait()
	err := p.err
	if err == nil {
		// only the parent can have cancelled us at this point
		err = p.ctx.Err()
	}
	p.cancel()
	return err
}

// Run is the common Submit-all-then-Stop sequence.
func Run[T any](ctx context.Context, workers int, tasks []T, handler func(context.Context, T) error) error {
	pool := NewWorkerPool(ctx, workers, handler)
	pool.Start()
	for _, t := range tasks {
		if !pool.Submit(t) {
			break
		}
	}
	return pool.Stop()
}

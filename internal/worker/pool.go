package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

type Task func(ctx context.Context) error

type Result struct {
	Name string
	Err  error
}

type job struct {
	name string
	run  Task
}

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	workers int
	tasks   chan job
	results chan Result
	wg      sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan job, buffer),
		results: make(chan Result, workers*16),
	}
}

// TrySubmit queues t without blocking. It reports false when the queue is full
// or the pool is closed.
func (p *Pool) TrySubmit(name string, t Task) (bool, error) {
	if p == nil || t == nil {
		return false, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false, ErrPoolClosed
	}
	select {
	case p.tasks <- job{name: name, run: t}:
		return true, nil
	default:
		return false, nil
	}
}

// Run starts the workers. The returned channel carries one Result per task and
// is closed after Close once the queue is drained, or when ctx is cancelled.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return p.results
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-p.tasks:
					if !ok {
						return
					}
					err := j.run(ctx)
					select {
					case <-ctx.Done():
						return
					case p.results <- Result{Name: j.name, Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p.results
}

// Close stops accepting tasks. Queued tasks still run.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

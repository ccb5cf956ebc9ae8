package ingest

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	ErrQueueFull   = errors.New("ingest: reconciliation queue is full")
	ErrPoolStopped = errors.New("ingest: reconciliation pool is stopped")
)

type ReconcileFunc func(ctx context.Context, jobID string) error

// Pool is the in-process dispatcher: a bounded queue consumed by a fixed
// number of reconciliation workers. The bound is the backpressure mechanism;
// a full queue rejects the trigger instead of spawning unbounded goroutines.
type Pool struct {
	queue chan string

	mu      sync.RWMutex
	stopped bool

	wg sync.WaitGroup
}

func NewPool(queueSize int) *Pool {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{queue: make(chan string, queueSize)}
}

// Start launches the worker goroutines. Workers run each job on a fresh
// background context: once reconciliation starts there is no cancellation
// path, the remote call runs to completion or times out.
func (p *Pool) Start(workers int, fn ReconcileFunc) {
	if workers <= 0 {
		workers = 2
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer p.wg.Done()
			for jobID := range p.queue {
				if err := fn(context.Background(), jobID); err != nil {
					log.Printf("ingest: worker=%d job=%s reconcile: %v", workerID, jobID, err)
				}
			}
		}(i)
	}
}

func (p *Pool) Dispatch(ctx context.Context, jobID string) error {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new dispatches and waits for queued work to drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

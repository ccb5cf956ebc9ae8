package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPool_ProcessesDispatchedJobs(t *testing.T) {
	p := NewPool(8)

	var mu sync.Mutex
	seen := make(map[string]bool)
	p.Start(3, func(ctx context.Context, jobID string) error {
		mu.Lock()
		seen[jobID] = true
		mu.Unlock()
		return nil
	})

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := p.Dispatch(context.Background(), id); err != nil {
			t.Fatalf("dispatch %s: %v", id, err)
		}
	}
	p.Stop()

	if len(seen) != 4 {
		t.Fatalf("expected 4 jobs processed, got %d", len(seen))
	}
}

func TestPool_FullQueueRejects(t *testing.T) {
	p := NewPool(1)
	// No workers started, so the single slot fills and stays full.
	if err := p.Dispatch(context.Background(), "a"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := p.Dispatch(context.Background(), "b"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPool_StoppedRejects(t *testing.T) {
	p := NewPool(4)
	p.Start(1, func(ctx context.Context, jobID string) error { return nil })
	p.Stop()

	if err := p.Dispatch(context.Background(), "a"); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestPool_StopDrainsQueuedWork(t *testing.T) {
	p := NewPool(16)

	var mu sync.Mutex
	var processed int
	p.Start(2, func(ctx context.Context, jobID string) error {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 10; i++ {
		if err := p.Dispatch(context.Background(), "job"); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	p.Stop()

	if processed != 10 {
		t.Fatalf("expected all queued work drained on Stop, processed=%d", processed)
	}
}

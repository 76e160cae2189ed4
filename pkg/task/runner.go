// Package task runs in-process background jobs keyed by job id.
package task

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrAlreadyRunning = errors.New("task: job already running")
	ErrStopped        = errors.New("task: runner stopped")
)

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner owns every background task. Task contexts derive from the runner, never from a
// request, and at most limit tasks hold a slot at the same time.
type Runner struct {
	base   context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted

	mu      sync.Mutex
	tasks   map[string]*handle
	stopped bool
}

func NewRunner(limit int) *Runner {
	if limit < 1 {
		limit = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		base:   ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(limit)),
		tasks:  make(map[string]*handle),
	}
}

// Go starts fn for jobID. fn waits for a free slot first; if the runner is stopped while
// waiting, fn still runs with an already cancelled context so it can record the outcome.
func (r *Runner) Go(jobID string, fn func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrStopped
	}
	if _, ok := r.tasks[jobID]; ok {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(r.base)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	r.tasks[jobID] = h

	go r.run(ctx, jobID, h, fn)
	return nil
}

func (r *Runner) run(ctx context.Context, jobID string, h *handle, fn func(ctx context.Context)) {
	defer func() {
		h.cancel()
		r.mu.Lock()
		delete(r.tasks, jobID)
		r.mu.Unlock()
		close(h.done)
	}()

	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("[Runner] task panicked", zap.String("job_id", jobID), zap.Any("panic", rec))
		}
	}()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		fn(ctx)
		return
	}
	defer r.sem.Release(1)

	fn(ctx)
}

// Wait blocks until the task for jobID finishes. Unknown ids return immediately.
func (r *Runner) Wait(jobID string) {
	r.mu.Lock()
	h, ok := r.tasks[jobID]
	r.mu.Unlock()
	if ok {
		<-h.done
	}
}

func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Stop cancels every task and waits for them to return, or for ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	pending := make([]*handle, 0, len(r.tasks))
	for _, h := range r.tasks {
		pending = append(pending, h)
	}
	r.mu.Unlock()

	r.cancel()

	for _, h := range pending {
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

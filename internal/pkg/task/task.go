package task

import (
	"context"
	"sync"
	"time"
)

// Task runs a function once after a delay unless it is cancelled first.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	fired bool
}

// After schedules fn to run after d. fn is skipped when parent is done or
// Cancel is called before the delay elapses. The context handed to fn is
// cancelled once fn returns.
func After(parent context.Context, d time.Duration, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		t.mu.Lock()
		if ctx.Err() != nil {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()

		fn(ctx)
	}()
	return t
}

// Cancel stops the task. It reports whether fn was prevented from running.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel()
	return !t.fired
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finished or was cancelled.
func (t *Task) Wait() { <-t.done }

// Fired reports whether fn started.
func (t *Task) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

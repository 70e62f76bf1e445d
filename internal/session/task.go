package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is one in-flight answer. It runs on its own goroutine and can be
// cancelled; Done is closed once a final status is set.
type Task struct {
	ID    string
	Query string

	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	status   Status
	result   string
	err      error
	finished time.Time
}

// startTask runs fn in the background and records its outcome. onDone is
// called after the outcome is recorded and before Done is closed.
func startTask(parent context.Context, query string, fn func(ctx context.Context) (string, error), onDone func(*Task)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		ID:      uuid.NewString(),
		Query:   query,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  StatusPending,
	}
	go func() {
		defer close(t.done)
		defer cancel()

		result, err := fn(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}

		t.mu.Lock()
		t.finished = time.Now()
		switch {
		case err != nil:
			t.status, t.err = StatusFailed, err
		case result == "":
			t.status = StatusFailed
		default:
			t.status, t.result = StatusCompleted, result
		}
		t.mu.Unlock()

		if onDone != nil {
			onDone(t)
		}
	}()
	return t
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the task. A task that already finished is unaffected.
func (t *Task) Cancel() { t.cancel() }

func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the answer and the error, if any, once the task is done.
func (t *Task) Result() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Elapsed is the running time so far, or the total once finished.
func (t *Task) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.finished.IsZero() {
		return t.finished.Sub(t.started)
	}
	return time.Since(t.started)
}

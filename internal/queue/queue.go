package queue

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrClosed is returned when submitting to a queue that has been closed.
var ErrClosed = errors.New("queue closed")

// Task is a unit of work executed on a queue's worker.
type Task func()

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Queue runs submitted tasks one at a time, in submission order, on a
// single dedicated goroutine.
type Queue struct {
	name   string
	logger *slog.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	tasks     []Task
	closed    bool
	onFailure func(err error)

	doneCh chan struct{}
}

// New creates a queue and starts its worker.
func New(name string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		name:   name,
		logger: logger.With("queue", name),
		doneCh: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.run()
	return q
}

// Name returns the queue name used in logs.
func (q *Queue) Name() string {
	return q.name
}

// SetFailureHandler sets the callback invoked when a task panics.
// Without a handler the failure is logged.
func (q *Queue) SetFailureHandler(handler func(err error)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onFailure = handler
}

// SubmitAsync enqueues task and returns immediately.
func (q *Queue) SubmitAsync(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn("dropping task submitted to closed queue")
		return ErrClosed
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return nil
}

// SubmitSync enqueues task and blocks until it and every task submitted
// before it have completed. It must not be called from a task running on
// the same queue.
func (q *Queue) SubmitSync(task Task) error {
	done := make(chan struct{})
	err := q.SubmitAsync(func() {
		defer close(done)
		task()
	})
	if err != nil {
		return err
	}

	<-done
	return nil
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close stops accepting tasks, runs the ones already queued and waits for
// the worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.doneCh
		return
	}
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.doneCh
	q.logger.Debug("queue closed")
}

// run is the worker loop.
func (q *Queue) run() {
	defer close(q.doneCh)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}

		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.execute(task)
	}
}

// execute runs a single task, recovering from panics so the worker survives.
func (q *Queue) execute(task Task) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err := &PanicError{Value: r, Stack: debug.Stack()}

		q.mu.Lock()
		handler := q.onFailure
		q.mu.Unlock()

		if handler != nil {
			handler(err)
			return
		}
		q.logger.Error("task failed", "error", err, "stack", string(err.Stack))
	}()

	task()
}

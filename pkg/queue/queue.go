// Package queue provides a rate-limited task queue that serializes calls to
// a single external resource.
//
// Any number of goroutines may submit work; the queue runs the injected
// worker for one task at a time in FIFO order and pauses for a fixed delay
// after every task. Every submitted task is resolved exactly once: when the
// worker fails, the task resolves with the configured fallback value and the
// error, so callers never have to handle a missing result.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrWorkerPanic is reported when the worker panics while processing a task.
var ErrWorkerPanic = errors.New("queue worker panicked")

// DefaultDelay is the pause after each task when Config.Delay is zero.
const DefaultDelay = time.Second

// Worker processes one task input.
type Worker[In, Out any] func(ctx context.Context, in In) (Out, error)

// Result is the outcome of one task. When Err is non-nil, Value already holds
// the fallback for the input.
type Result[Out any] struct {
	Value Out
	Err   error
}

// Config holds queue parameters.
type Config[In, Out any] struct {
	// Delay is the pause after each completed task. Zero means DefaultDelay;
	// a negative value disables the pause.
	Delay time.Duration

	// Fallback computes the value a failed task resolves with. Nil resolves
	// failed tasks with the zero value.
	Fallback func(in In) Out

	// OnDone, if set, is called from the drain loop after each task.
	OnDone func(in In, res Result[Out], elapsed time.Duration)

	Logger *slog.Logger
}

type task[In, Out any] struct {
	ctx  context.Context //nolint:containedctx // Each task carries its submitter's context to the drain loop.
	in   In
	done chan Result[Out]
}

// Queue serializes worker calls. It is safe for concurrent use and must not
// be copied after first use.
type Queue[In, Out any] struct {
	worker   Worker[In, Out]
	fallback func(In) Out
	onDone   func(In, Result[Out], time.Duration)
	logger   *slog.Logger

	mu       sync.Mutex
	pending  []*task[In, Out]
	draining bool
	idle     chan struct{}

	delay time.Duration
}

// New creates a Queue running worker.
func New[In, Out any](worker Worker[In, Out], cfg Config[In, Out]) *Queue[In, Out] {
	delay := cfg.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	if delay < 0 {
		delay = 0
	}

	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}

	idle := make(chan struct{})
	close(idle)

	return &Queue[In, Out]{
		worker:   worker,
		fallback: cfg.Fallback,
		onDone:   cfg.OnDone,
		logger:   lg,
		idle:     idle,
		delay:    delay,
	}
}

// Submit appends a task and returns a channel that receives its result once.
// Submitting from any goroutine, including from inside the worker, is safe.
func (q *Queue[In, Out]) Submit(ctx context.Context, in In) <-chan Result[Out] {
	if ctx == nil {
		ctx = context.Background()
	}

	t := &task[In, Out]{ctx: ctx, in: in, done: make(chan Result[Out], 1)}

	q.mu.Lock()
	q.pending = append(q.pending, t)

	start := !q.draining
	if start {
		q.draining = true
		q.idle = make(chan struct{})
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}

	return t.done
}

// Do submits in and waits for its result. The returned value is the fallback
// whenever the error is non-nil.
func (q *Queue[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	res := <-q.Submit(ctx, in)

	return res.Value, res.Err
}

// Len returns the number of tasks waiting to be processed, excluding the one
// in flight.
func (q *Queue[In, Out]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// Idle returns a channel closed once the queue has no pending or running
// task. A later Submit makes the queue busy again and Idle returns a new
// channel.
func (q *Queue[In, Out]) Idle() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.idle
}

func (q *Queue[In, Out]) drain() {
	for {
		q.mu.Lock()

		if len(q.pending) == 0 {
			q.draining = false
			close(q.idle)
			q.mu.Unlock()

			return
		}

		t := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		started := time.Now()
		res, called := q.process(t)
		elapsed := time.Since(started)

		t.done <- res

		if q.onDone != nil {
			q.onDone(t.in, res, elapsed)
		}

		// Tasks abandoned before reaching the worker cost the resource nothing.
		if called && q.delay > 0 {
			time.Sleep(q.delay)
		}
	}
}

func (q *Queue[In, Out]) process(t *task[In, Out]) (res Result[Out], called bool) {
	if err := t.ctx.Err(); err != nil {
		return q.fail(t.in, err), false
	}

	defer func() {
		if r := recover(); r != nil {
			res = q.fail(t.in, fmt.Errorf("%w: %v", ErrWorkerPanic, r))
		}
	}()

	called = true

	out, err := q.worker(t.ctx, t.in)
	if err != nil {
		return q.fail(t.in, err), true
	}

	return Result[Out]{Value: out}, true
}

func (q *Queue[In, Out]) fail(in In, err error) Result[Out] {
	q.logger.Warn("queue task failed, using fallback", "input", in, "error", err)

	var value Out
	if q.fallback != nil {
		value = q.fallback(in)
	}

	return Result[Out]{Value: value, Err: err}
}

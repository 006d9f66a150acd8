// Package mainloop provides the serial executor the screen runs on. Every
// piece of controller and view state is touched only from tasks running on
// the loop, so none of it needs locking.
package mainloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var ErrStopped = errors.New("main loop stopped")

// Loop runs dispatched tasks one at a time, in dispatch order.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []task
	stopped bool

	wake chan struct{}
}

// task is one queued unit of work. drop, when set, is called instead of fn
// for tasks still queued when the loop stops.
type task struct {
	fn   func()
	drop func()
}

// New creates a loop. Tasks may be dispatched before Run is called.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Dispatch enqueues fn and returns immediately. It is safe to call from any
// goroutine, including from a task already running on the loop. It reports
// false once the loop has stopped.
func (l *Loop) Dispatch(fn func()) bool {
	return l.enqueue(task{fn: fn})
}

func (l *Loop) enqueue(t task) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, t)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call states.
const (
	callPending int32 = iota
	callRunning
	callAbandoned
)

// Call runs fn on the loop and waits for it to finish. It returns ErrStopped
// if the loop stops before fn runs. If ctx ends first, fn is guaranteed not
// to run and ctx.Err() is returned; if fn has already started, Call waits for
// it. Calling it from a task on the loop deadlocks.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	var state atomic.Int32
	done := make(chan error, 1)

	ok := l.enqueue(task{
		fn: func() {
			if !state.CompareAndSwap(callPending, callRunning) {
				return
			}
			defer func() { done <- nil }()
			fn()
		},
		drop: func() { done <- ErrStopped },
	})
	if !ok {
		return ErrStopped
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if state.CompareAndSwap(callPending, callAbandoned) {
			return ctx.Err()
		}
		return <-done
	}
}

// Run executes tasks until ctx is done. Tasks still queued on exit are not
// run; pending Calls among them return ErrStopped.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("main loop started")
	defer func() {
		l.mu.Lock()
		l.stopped = true
		rest := l.queue
		l.queue = nil
		l.mu.Unlock()
		l.drop(rest)
	}()

	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		l.mu.Unlock()

		for i, t := range tasks {
			if ctx.Err() != nil {
				l.drop(tasks[i:])
				return ctx.Err()
			}
			l.run(t.fn)
		}
		if len(tasks) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drop(tasks []task) {
	if len(tasks) == 0 {
		return
	}
	for _, t := range tasks {
		if t.drop != nil {
			t.drop()
		}
	}
	l.logger.Debug("main loop dropped tasks", "dropped", len(tasks))
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("main loop task panicked", "panic", r)
		}
	}()
	fn()
}

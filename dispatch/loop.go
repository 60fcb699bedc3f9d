// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dispatch provides a UI execution context for framepump.
//
// A [Loop] runs queued actions on the goroutine that called Run. Hosts call
// Run from the goroutine that owns the window (usually main, with the OS
// thread locked) and hand the Loop to framepump.WithDispatcher.
//
// Example:
//
//	func main() {
//	    loop := dispatch.New(dispatch.WithLockOSThread())
//	    go app(loop)
//	    if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	        log.Fatal(err)
//	    }
//	}
package dispatch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/gogpu/framepump"
)

// DefaultQueueSize is the number of actions that can be pending before
// RunOnUIThread blocks.
const DefaultQueueSize = 64

var (
	// ErrStopped is returned by Call when the loop stops before the call ran.
	ErrStopped = errors.New("dispatch: loop stopped")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("dispatch: loop already running")
)

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the action queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithLockOSThread locks the Run goroutine to its OS thread for the
// duration of Run. Windowing APIs that require the main thread need this.
func WithLockOSThread() Option {
	return func(l *Loop) {
		l.lockOSThread = true
	}
}

// task is a queued action with its drop callback.
type task struct {
	run  func()
	drop func()
}

// Loop executes actions on a single goroutine.
type Loop struct {
	queueSize    int
	lockOSThread bool
	queue        chan task

	mu       sync.Mutex
	running  bool
	finished bool
	ctx      framepump.ExecContext
	started  chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Loop. Nothing runs until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		queueSize: DefaultQueueSize,
		started:   make(chan struct{}),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.queue = make(chan task, l.queueSize)
	return l
}

// Run executes queued actions on the calling goroutine until ctx is done
// or Stop is called. It returns ctx.Err() or nil after Stop. Actions still
// queued when Run returns are not run; their drop callbacks are invoked
// instead. The Loop stays stopped afterwards.
//
// A concurrent Run returns ErrRunning.
func (l *Loop) Run(ctx context.Context) error {
	if l.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrRunning
	}
	select {
	case <-l.stop:
		l.mu.Unlock()
		return nil
	default:
	}
	l.running = true
	l.ctx = framepump.CurrentContext()
	l.mu.Unlock()
	close(l.started)

	log := framepump.Logger()
	log.Debug("dispatch: loop running", "context", l.Context())

	defer func() {
		// Mark the loop finished before draining: a sender that enqueues
		// after this point sees finished and drains its own task.
		l.mu.Lock()
		l.running = false
		l.finished = true
		l.ctx = framepump.ExecContext{}
		l.mu.Unlock()
		l.Stop()
		if n := l.drain(); n > 0 {
			log.Warn("dispatch: dropped queued actions", "count", n)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case t := <-l.queue:
			t.run()
		}
	}
}

// drain empties the queue, invoking each task's drop callback.
func (l *Loop) drain() int {
	n := 0
	for {
		select {
		case t := <-l.queue:
			n++
			if t.drop != nil {
				t.drop()
			}
		default:
			return n
		}
	}
}

// Stop makes Run return. It is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Started returns a channel closed once Run is executing.
func (l *Loop) Started() <-chan struct{} {
	return l.started
}

// Running reports whether Run is executing.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Context returns the execution context of the Run goroutine, or the zero
// token when the loop is not running.
func (l *Loop) Context() framepump.ExecContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx
}

// RunOnUIThread queues action for asynchronous execution on the loop
// goroutine. It returns framepump.ErrNoUIThread when the loop is not
// running. An accepted action that is still queued when the loop stops is
// discarded; use RunOnUIThreadOr to be told.
//
// It blocks while the queue is full, so it must not be called from the
// loop goroutine with a full queue.
func (l *Loop) RunOnUIThread(action func()) error {
	return l.RunOnUIThreadOr(action, nil)
}

// RunOnUIThreadOr is like RunOnUIThread, but once it has returned nil
// exactly one of action or dropped is called. dropped runs on an arbitrary
// goroutine when the loop stops before reaching action.
func (l *Loop) RunOnUIThreadOr(action, dropped func()) error {
	if !l.Running() {
		return framepump.ErrNoUIThread
	}

	var once sync.Once
	t := task{
		run: func() { once.Do(action) },
	}
	if dropped != nil {
		t.drop = func() { once.Do(dropped) }
	}

	select {
	case l.queue <- t:
	case <-l.stop:
		return framepump.ErrNoUIThread
	}

	l.mu.Lock()
	finished := l.finished
	l.mu.Unlock()
	if finished {
		l.drain()
	}
	return nil
}

// Call runs fn on the loop goroutine and waits for it to return. Called from
// the loop goroutine, fn runs inline. It returns ErrStopped when the loop
// stops before fn ran.
func (l *Loop) Call(fn func()) error {
	if ctx := l.Context(); !ctx.IsZero() && ctx == framepump.CurrentContext() {
		fn()
		return nil
	}

	done := make(chan error, 1)
	if err := l.RunOnUIThreadOr(func() {
		defer close(done)
		fn()
	}, func() {
		done <- ErrStopped
	}); err != nil {
		return err
	}
	return <-done
}

var _ framepump.DroppingDispatcher = (*Loop)(nil)

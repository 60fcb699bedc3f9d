package framepump

import (
	"sync"
	"sync/atomic"
)

// Handler is a listener registered on an [Event].
type Handler[T any] func(T) error

// Subscription is a scoped registration handle. Release detaches the
// registration; it is idempotent and safe for concurrent use.
type Subscription interface {
	Release()
}

// SubscriptionFunc adapts a function to the Subscription interface.
// The function is called at most once.
type SubscriptionFunc func()

// Release calls f.
func (f SubscriptionFunc) Release() {
	if f != nil {
		f()
	}
}

type listener[T any] struct {
	handler Handler[T]
}

// Event is an ordered set of independent listeners.
//
// Listeners are invoked in registration order. Fire iterates over a
// snapshot, so adding or releasing listeners while an event is being
// delivered affects only later deliveries. The zero value is ready to use.
type Event[T any] struct {
	mu        sync.Mutex
	listeners []*listener[T]
}

// Add registers h and returns its subscription.
func (e *Event[T]) Add(h Handler[T]) Subscription {
	l := &listener[T]{handler: h}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()

	var released atomic.Bool
	return SubscriptionFunc(func() {
		if released.Swap(true) {
			return
		}
		e.remove(l)
	})
}

func (e *Event[T]) remove(l *listener[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.listeners {
		if cur == l {
			// Copy instead of shifting in place: snapshots held by
			// in-flight Fire calls share the old backing array.
			next := make([]*listener[T], 0, len(e.listeners)-1)
			next = append(next, e.listeners[:i]...)
			e.listeners = append(next, e.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Fire invokes every listener with v. It stops at the first listener that
// returns an error and returns that error.
func (e *Event[T]) Fire(v T) error {
	e.mu.Lock()
	snapshot := e.listeners
	e.mu.Unlock()

	for _, l := range snapshot {
		if err := l.handler(v); err != nil {
			return err
		}
	}
	return nil
}

package framepump

import (
	"log/slog"
	"sync"
)

// Option configures a Coordinator during creation.
//
// Example:
//
//	c, err := framepump.New(ticks, paints,
//	    framepump.WithDispatcher(loop),
//	    framepump.WithPlatform(host),
//	)
type Option func(*options)

type options struct {
	dispatcher Dispatcher
	platform   Platform
	affinity   ExecContext
	probe      func() ExecContext
	lock       sync.Locker
	logger     *slog.Logger
}

func defaultOptions() options {
	return options{
		dispatcher: noDispatcher{},
		platform:   NullPlatform{},
		probe:      CurrentContext,
	}
}

// WithDispatcher sets the capability used to run cross-thread bootstrap on
// the UI context. Without one, cross-thread bootstrap fails with
// [ErrNoUIThread].
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

// WithPlatform sets the host hooks. The default is [NullPlatform].
func WithPlatform(p Platform) Option {
	return func(o *options) {
		if p != nil {
			o.platform = p
		}
	}
}

// WithAffinity sets the UI execution context instead of capturing the
// constructing goroutine.
func WithAffinity(ctx ExecContext) Option {
	return func(o *options) {
		o.affinity = ctx
	}
}

// WithContextProbe replaces [CurrentContext] as the way the coordinator
// identifies the context a paint event arrived on.
func WithContextProbe(probe func() ExecContext) Option {
	return func(o *options) {
		if probe != nil {
			o.probe = probe
		}
	}
}

// WithRenderLock sets the lock that serializes update and render in
// cross-thread mode. The default is a sync.Mutex.
func WithRenderLock(l sync.Locker) Option {
	return func(o *options) {
		o.lock = l
	}
}

// WithLogger sets a logger for this coordinator only. Without it the
// coordinator logs through [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

package framepump

// TickSource is an external periodic signal such as compositor vsync.
//
// Subscribe registers handler to be invoked with no arguments once per
// tick, on a goroutine chosen by the source. Errors returned by handler
// belong to the source; it decides whether to log or stop.
type TickSource interface {
	Subscribe(handler func() error) Subscription
}

// PaintSource delivers native paint events. Each event carries the surface
// to draw into.
type PaintSource interface {
	OnPaint(handler Handler[Surface]) Subscription
}

// Dispatcher marshals work onto the UI execution context.
//
// RunOnUIThread schedules action to run asynchronously on the UI context.
// It returns [ErrNoUIThread] when no UI context can be located; the action
// is then never run.
type Dispatcher interface {
	RunOnUIThread(action func()) error
}

// DroppingDispatcher is a Dispatcher that may discard accepted actions, for
// example when its loop stops with work still queued. Once RunOnUIThreadOr
// has returned nil, exactly one of action or dropped is called.
type DroppingDispatcher interface {
	Dispatcher
	RunOnUIThreadOr(action, dropped func()) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(action func()) error

// RunOnUIThread calls f(action).
func (f DispatcherFunc) RunOnUIThread(action func()) error {
	return f(action)
}

// noDispatcher is used when no Dispatcher was configured.
type noDispatcher struct{}

func (noDispatcher) RunOnUIThread(func()) error { return ErrNoUIThread }

// Platform holds the host-specific hooks of a coordinator.
type Platform interface {
	// SetupSurface performs one-time surface preparation on the first paint.
	SetupSurface(s Surface) error

	// BeforeUpdate runs at the start of every update cycle.
	BeforeUpdate()

	// InvalidateSurface asks the host to deliver a paint event.
	InvalidateSurface()
}

// NullPlatform implements Platform with no-ops.
type NullPlatform struct{}

// SetupSurface does nothing.
func (NullPlatform) SetupSurface(Surface) error { return nil }

// BeforeUpdate does nothing.
func (NullPlatform) BeforeUpdate() {}

// InvalidateSurface does nothing.
func (NullPlatform) InvalidateSurface() {}

// PlatformFuncs implements Platform from optional functions. Nil fields
// are no-ops.
type PlatformFuncs struct {
	Setup      func(Surface) error
	Before     func()
	Invalidate func()
}

// SetupSurface calls p.Setup if set.
func (p PlatformFuncs) SetupSurface(s Surface) error {
	if p.Setup == nil {
		return nil
	}
	return p.Setup(s)
}

// BeforeUpdate calls p.Before if set.
func (p PlatformFuncs) BeforeUpdate() {
	if p.Before != nil {
		p.Before()
	}
}

// InvalidateSurface calls p.Invalidate if set.
func (p PlatformFuncs) InvalidateSurface() {
	if p.Invalidate != nil {
		p.Invalidate()
	}
}

var (
	_ Platform   = NullPlatform{}
	_ Platform   = PlatformFuncs{}
	_ Dispatcher = DispatcherFunc(nil)
)

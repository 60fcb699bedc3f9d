package framepump

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Coordinator owns the lifecycle of a frame-pumped surface: the bootstrap on
// first paint, the dirty flag, and the render lock that keeps update and
// render apart when they run on different execution contexts.
//
// The Initialized, Update and Draw events may be subscribed to at any time.
// Listeners run synchronously on whichever context triggered the cycle:
// paint listeners on the paint context, update listeners on the tick
// context.
type Coordinator struct {
	// Initialized fires exactly once, after the first update cycle has run
	// and the pump has started.
	Initialized *Event[Surface]

	// Update fires once per tick after the pump starts.
	Update *Event[Frame]

	// Draw fires once per paint with the canvas transform already reset and
	// scaled by the surface scale factor.
	Draw *Event[Surface]

	pump       *FramePump
	paints     PaintSource
	dispatcher Dispatcher
	platform   Platform
	probe      func() ExecContext
	affinity   ExecContext
	renderLock sync.Locker
	logger     *slog.Logger

	state          atomic.Int32
	mode           atomic.Int32
	dirty          atomic.Bool
	paintRequested atomic.Bool
	frames         atomic.Uint64

	mu       sync.Mutex // guards initSub, paintSub, err and pump start vs Close
	initSub  Subscription
	paintSub Subscription
	err      error

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Coordinator that pumps updates from ticks and renders on
// paint events from paints.
//
// The execution context calling New is captured as the UI context unless
// [WithAffinity] is given. A one-shot listener is attached to paints; no
// other work happens until the first paint event.
//
// Returns [ErrNilSource] if ticks or paints is nil.
func New(ticks TickSource, paints PaintSource, opts ...Option) (*Coordinator, error) {
	if ticks == nil || paints == nil {
		return nil, ErrNilSource
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.affinity.IsZero() {
		o.affinity = o.probe()
	}
	if o.lock == nil {
		o.lock = &sync.Mutex{}
	}

	c := &Coordinator{
		Initialized: &Event[Surface]{},
		Update:      &Event[Frame]{},
		Draw:        &Event[Surface]{},
		pump:        NewFramePump(ticks),
		paints:      paints,
		dispatcher:  o.dispatcher,
		platform:    o.platform,
		probe:       o.probe,
		affinity:    o.affinity,
		renderLock:  o.lock,
		logger:      o.logger,
		ready:       make(chan struct{}),
	}

	sub := paints.OnPaint(c.onFirstPaint)
	c.mu.Lock()
	if c.State() != StateUninitialized {
		// The source delivered a paint while subscribing.
		c.mu.Unlock()
		sub.Release()
	} else {
		c.initSub = sub
		c.mu.Unlock()
	}

	c.log().Debug("framepump: coordinator created", "affinity", c.affinity)
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(ticks TickSource, paints PaintSource, opts ...Option) *Coordinator {
	c, err := New(ticks, paints, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Mode returns the scheduling regime, ModeUnset before the first paint.
func (c *Coordinator) Mode() Mode {
	return Mode(c.mode.Load())
}

// Affinity returns the UI execution context captured at construction.
func (c *Coordinator) Affinity() ExecContext {
	return c.affinity
}

// MarkDirty flags that state changed and a paint is warranted. The next
// update cycle requests a paint from the platform.
func (c *Coordinator) MarkDirty() {
	c.dirty.Store(true)
}

// IsDirty reports whether the dirty flag is set.
func (c *Coordinator) IsDirty() bool {
	return c.dirty.Load()
}

// PaintRequested reports whether an update cycle requested a paint that has
// not started yet.
func (c *Coordinator) PaintRequested() bool {
	return c.paintRequested.Load()
}

// Frames returns how many update cycles have run.
func (c *Coordinator) Frames() uint64 {
	return c.frames.Load()
}

// Ready returns a channel closed once bootstrap has finished, successfully
// or not, or the coordinator was closed.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Err returns the error that moved the coordinator to StateFailed, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close stops the pump and detaches from the paint source. The coordinator
// moves to StateClosed. Close is idempotent.
//
// Close does not wait for a cycle already in progress.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	prev := State(c.state.Swap(int32(StateClosed)))
	initSub, paintSub := c.initSub, c.paintSub
	c.initSub, c.paintSub = nil, nil
	c.mu.Unlock()

	if prev == StateClosed {
		return nil
	}

	c.pump.Stop()
	if initSub != nil {
		initSub.Release()
	}
	if paintSub != nil {
		paintSub.Release()
	}
	c.markReady()
	c.log().Info("framepump: closed", "from", prev)
	return nil
}

func (c *Coordinator) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

func (c *Coordinator) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// onFirstPaint is the one-shot paint listener.
func (c *Coordinator) onFirstPaint(s Surface) error {
	if !c.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		if c.State() == StateClosed {
			return ErrClosed
		}
		return nil
	}

	// Detach before any dispatched work so the listener cannot fire again.
	c.mu.Lock()
	sub := c.initSub
	c.initSub = nil
	c.mu.Unlock()
	if sub != nil {
		sub.Release()
	}

	w, h := s.Size()
	c.log().Info("framepump: first paint", "width", w, "height", h, "scale", s.ScaleFactor())

	if err := c.platform.SetupSurface(s); err != nil {
		return c.fail(fmt.Errorf("framepump: surface setup: %w", err))
	}

	// A zero token identifies no context, so it never matches the affinity.
	if cur := c.probe(); !cur.IsZero() && cur == c.affinity {
		return c.bootstrapSingle(s)
	}
	return c.bootstrapCross(s)
}

func (c *Coordinator) bootstrapSingle(s Surface) error {
	c.mode.Store(int32(ModeSingleThreaded))
	c.attachRender(c.render)

	if err := c.update(); err != nil {
		return c.fail(fmt.Errorf("framepump: initial update: %w", err))
	}
	if !c.startPump(c.update) {
		return ErrClosed
	}
	return c.finishInit(s)
}

func (c *Coordinator) bootstrapCross(s Surface) error {
	c.mode.Store(int32(ModeCrossThread))
	c.attachRender(c.renderLocked)

	bootstrap := func() {
		if c.State() != StateInitializing {
			return
		}
		if err := c.updateLocked(); err != nil {
			err = c.fail(fmt.Errorf("framepump: initial update: %w", err))
			c.log().Error("framepump: cross-thread bootstrap failed", "err", err)
			return
		}
		if !c.startPump(c.updateLocked) {
			return
		}
		if err := c.finishInit(s); err != nil {
			c.log().Error("framepump: initialized listener failed", "err", err)
		}
	}

	var err error
	if d, ok := c.dispatcher.(DroppingDispatcher); ok {
		err = d.RunOnUIThreadOr(bootstrap, func() {
			_ = c.fail(fmt.Errorf("framepump: bootstrap dropped: %w", ErrNoUIThread))
		})
	} else {
		err = c.dispatcher.RunOnUIThread(bootstrap)
	}
	if err != nil {
		return c.fail(fmt.Errorf("framepump: dispatch bootstrap: %w", err))
	}
	return nil
}

func (c *Coordinator) attachRender(h Handler[Surface]) {
	sub := c.paints.OnPaint(h)
	c.mu.Lock()
	if c.State() == StateClosed {
		c.mu.Unlock()
		sub.Release()
		return
	}
	c.paintSub = sub
	c.mu.Unlock()
}

// startPump starts the pump unless the coordinator left StateInitializing.
func (c *Coordinator) startPump(action func() error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.State() != StateInitializing {
		return false
	}
	c.pump.Start(action)
	return true
}

func (c *Coordinator) finishInit(s Surface) error {
	err := c.Initialized.Fire(s)
	if c.state.CompareAndSwap(int32(StateInitializing), int32(StateRunning)) {
		c.log().Info("framepump: running", "mode", c.Mode())
	}
	c.markReady()
	return err
}

// fail moves an initializing coordinator to StateFailed and returns err.
func (c *Coordinator) fail(err error) error {
	c.mu.Lock()
	if !c.state.CompareAndSwap(int32(StateInitializing), int32(StateFailed)) {
		c.mu.Unlock()
		return err
	}
	c.err = err
	paintSub := c.paintSub
	c.paintSub = nil
	c.mu.Unlock()

	c.pump.Stop()
	if paintSub != nil {
		paintSub.Release()
	}
	c.markReady()
	c.log().Error("framepump: initialization failed", "err", err)
	return err
}

// update is one update cycle. Updates run every tick; a paint is requested
// only when the dirty flag is set.
func (c *Coordinator) update() error {
	c.platform.BeforeUpdate()

	seq := c.frames.Add(1)
	if err := c.Update.Fire(Frame{Seq: seq, Mode: c.Mode()}); err != nil {
		return err
	}

	if c.dirty.Load() {
		c.paintRequested.Store(true)
		c.platform.InvalidateSurface()
		c.log().Debug("framepump: paint requested", "frame", seq)
	}
	return nil
}

func (c *Coordinator) updateLocked() error {
	c.renderLock.Lock()
	defer c.renderLock.Unlock()
	return c.update()
}

// render is one render cycle. Flags are cleared before drawing so a dirty
// mark raised during Draw is seen by the next update.
func (c *Coordinator) render(s Surface) error {
	c.dirty.Store(false)
	c.paintRequested.Store(false)

	if canvas := s.Canvas(); canvas != nil {
		sf := s.ScaleFactor()
		if sf <= 0 {
			sf = 1
		}
		canvas.Identity()
		canvas.Scale(sf, sf)
	}
	return c.Draw.Fire(s)
}

func (c *Coordinator) renderLocked(s Surface) error {
	c.renderLock.Lock()
	defer c.renderLock.Unlock()
	return c.render(s)
}

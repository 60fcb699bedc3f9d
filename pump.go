package framepump

import (
	"sync"
	"sync/atomic"
)

// FramePump invokes a single registered action once per tick of a
// [TickSource].
//
// Start and Stop are idempotent and safe for concurrent use. Stop is
// cooperative: ticks delivered after Stop returns do nothing, but an action
// already running is not interrupted. Errors from the action are returned
// to the tick source unchanged.
type FramePump struct {
	source TickSource

	mu      sync.Mutex // guards sub
	sub     Subscription
	enabled atomic.Bool
	action  atomic.Pointer[func() error]
	ticks   atomic.Uint64
}

// NewFramePump creates a stopped pump driven by source.
// It panics if source is nil.
func NewFramePump(source TickSource) *FramePump {
	if source == nil {
		panic(ErrNilSource)
	}
	return &FramePump{source: source}
}

// Start registers action as the per-tick action and subscribes to the
// tick source if not already subscribed. Calling Start on a running pump
// replaces the action without subscribing twice.
func (p *FramePump) Start(action func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.action.Store(&action)
	if p.sub == nil {
		p.sub = p.source.Subscribe(p.onTick)
	}
	p.enabled.Store(true)
}

// Stop unsubscribes from the tick source and clears the action.
// It is a no-op when the pump is already stopped.
func (p *FramePump) Stop() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.enabled.Store(false)
	p.action.Store(nil)
	p.mu.Unlock()

	if sub != nil {
		sub.Release()
	}
}

// Enabled reports whether the pump is started.
func (p *FramePump) Enabled() bool {
	return p.enabled.Load()
}

// Ticks returns how many ticks invoked the action.
func (p *FramePump) Ticks() uint64 {
	return p.ticks.Load()
}

func (p *FramePump) onTick() error {
	if !p.enabled.Load() {
		return nil
	}
	action := p.action.Load()
	if action == nil || *action == nil {
		return nil
	}
	p.ticks.Add(1)
	return (*action)()
}

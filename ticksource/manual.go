// Package ticksource provides TickSource implementations for framepump.
//
// [Manual] delivers ticks when the host calls Tick, which suits hosts that
// already receive a vsync callback and tests that need synthetic ticks.
// [Interval] emits ticks from a time.Ticker and stands in for compositor
// vsync in headless programs.
package ticksource

import (
	"github.com/gogpu/framepump"
)

// Manual is a tick source driven by explicit Tick calls.
// The zero value is ready to use. Manual is safe for concurrent use.
type Manual struct {
	handlers framepump.Event[struct{}]
}

// Subscribe registers handler for subsequent ticks.
func (m *Manual) Subscribe(handler func() error) framepump.Subscription {
	return m.handlers.Add(func(struct{}) error { return handler() })
}

// Tick invokes every subscriber once, in subscription order, on the calling
// goroutine. It returns the first error and skips the remaining subscribers.
func (m *Manual) Tick() error {
	return m.handlers.Fire(struct{}{})
}

// Subscribers returns the number of active subscriptions.
func (m *Manual) Subscribers() int {
	return m.handlers.Len()
}

var _ framepump.TickSource = (*Manual)(nil)

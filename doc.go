// Package framepump drives a per-tick update callback from a display
// cadence and coordinates it with paint events that render into a
// GPU-backed surface.
//
// # Overview
//
// Three pieces are composed top-down:
//
//   - [TickSource]: an external periodic signal (compositor vsync, a
//     time.Ticker, a test driver) the pump subscribes to.
//   - [FramePump]: invokes a single registered action once per tick while
//     started. Start and Stop are idempotent.
//   - [Coordinator]: owns the lifecycle state machine, the dirty flag and
//     the render lock, and decides whether update and paint share one
//     execution context or run on two.
//
// # Quick Start
//
//	host, _ := ggsurface.NewHost(provider, window)
//	ticks := ticksource.NewInterval(ticksource.DefaultPeriod)
//
//	c, err := framepump.New(ticks, host,
//	    framepump.WithPlatform(host),
//	    framepump.WithDispatcher(loop),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c.Update.Add(func(f framepump.Frame) error {
//	    world.Step()
//	    c.MarkDirty()
//	    return nil
//	})
//	c.Draw.Add(func(s framepump.Surface) error {
//	    world.Render(s.Canvas().(*gg.Context))
//	    return nil
//	})
//
// # Lifecycle
//
// A Coordinator starts in [StateUninitialized] with a one-shot listener on
// the paint source. The first paint event detaches that listener, moves to
// [StateInitializing] and bootstraps:
//
//   - If the paint arrived on the context that constructed the Coordinator,
//     update and render run unlocked on that context ([ModeSingleThreaded]).
//   - Otherwise the render handler takes the render lock and the initial
//     update plus pump start are dispatched onto the construction context
//     ([ModeCrossThread]).
//
// After bootstrap the instance is [StateRunning] until [Coordinator.Close].
//
// # Dirty Gating
//
// The update cycle runs on every tick. A paint is requested from the
// [Platform] only when the dirty flag is set; the render cycle clears the
// flag before drawing so that a request raised while drawing survives.
//
// # Errors
//
// Listener errors are never swallowed. They stop the current fan-out and
// are returned to whoever triggered the cycle: the tick source for updates,
// the paint source for renders. Panics are not recovered.
package framepump

package ticksource

import (
	"context"
	"time"

	"github.com/gogpu/framepump"
)

// DefaultPeriod is a 60 Hz cadence.
const DefaultPeriod = time.Second / 60

// Interval emits ticks at a fixed period while Run is active.
//
// Handler errors are logged through framepump.Logger and do not stop the
// source; the failed handler simply runs again on the next tick.
type Interval struct {
	period   time.Duration
	handlers framepump.Event[struct{}]
}

// NewInterval creates an interval tick source. A non-positive period
// selects DefaultPeriod.
func NewInterval(period time.Duration) *Interval {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Interval{period: period}
}

// Period returns the tick period.
func (s *Interval) Period() time.Duration {
	return s.period
}

// Subscribe registers handler for subsequent ticks.
func (s *Interval) Subscribe(handler func() error) framepump.Subscription {
	return s.handlers.Add(func(struct{}) error { return handler() })
}

// Subscribers returns the number of active subscriptions.
func (s *Interval) Subscribers() int {
	return s.handlers.Len()
}

// Run delivers ticks on the calling goroutine until ctx is done, then
// returns ctx.Err(). A tick that overruns the period delays the next one
// rather than queueing it.
func (s *Interval) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	log := framepump.Logger()
	log.Debug("ticksource: interval started", "period", s.period)

	var n uint64
	for {
		select {
		case <-ctx.Done():
			log.Debug("ticksource: interval stopped", "ticks", n)
			return ctx.Err()
		case <-ticker.C:
			n++
			if err := s.handlers.Fire(struct{}{}); err != nil {
				log.Error("ticksource: tick handler failed", "tick", n, "err", err)
			}
		}
	}
}

var _ framepump.TickSource = (*Interval)(nil)

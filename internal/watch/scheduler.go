package watch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPollInterval is the pause between fetch cycles when no
// override is configured.
const DefaultPollInterval = 30 * time.Second

// Scheduler paces a polling session: the first tick is immediate,
// every later tick is separated by the configured interval. A
// scheduler is not restartable; construct a fresh one per session.
type Scheduler struct {
	limiter *rate.Limiter
}

// NewScheduler creates a scheduler with the given tick interval.
// Non-positive intervals fall back to DefaultPollInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	// Burst of one: the first Wait draws the stored token and returns
	// immediately, all later Waits block for the interval.
	return &Scheduler{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next tick is due or ctx is cancelled.
func (s *Scheduler) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Ticks exposes the schedule as an unbounded lazy channel. The channel
// closes once ctx is cancelled; nothing is sent after that.
func (s *Scheduler) Ticks(ctx context.Context) <-chan time.Time {
	ch := make(chan time.Time)
	go func() {
		defer close(ch)
		for {
			if err := s.Wait(ctx); err != nil {
				return
			}
			select {
			case ch <- time.Now():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

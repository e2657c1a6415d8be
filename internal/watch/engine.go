package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/models"
)

// Fetcher is the one round trip the wait engine depends on.
// *api.Client satisfies it; tests substitute scripted fetchers.
type Fetcher interface {
	FetchSailings(ctx context.Context, route models.Route, date time.Time) (models.SailingSet, error)
}

// Status is the engine's observable state for one tick.
type Status int

const (
	// StatusWaiting means the tracked sailing has no small-vehicle
	// capacity yet, or this round produced no usable data.
	StatusWaiting Status = iota

	// StatusFound means capacity appeared. Terminal.
	StatusFound

	// StatusFailed means the events endpoint is unreachable. Terminal;
	// the caller decides whether to start a fresh engine.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the per-tick result streamed to the engine's consumer.
type Outcome struct {
	Status Status
	Spots  int   // small-vehicle capacity, set when Status is StatusFound
	Err    error // terminal cause, set when Status is StatusFailed
}

// Engine polls the events endpoint for exactly one sailing uid and
// turns "poll forever" into "emit Waiting until Found, then stop".
type Engine struct {
	fetcher   Fetcher
	route     models.Route
	date      time.Time
	sailingID string
	interval  time.Duration
	logger    *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLogger attaches a logger for per-tick debug lines.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine bound to one (route, date, sailing uid).
func NewEngine(fetcher Fetcher, route models.Route, date time.Time, sailingID string, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		route:     route,
		date:      date,
		sailingID: sailingID,
		interval:  DefaultPollInterval,
		logger:    log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run starts the polling loop and returns its outcome stream. The
// channel closes after a terminal outcome or once ctx is cancelled;
// nothing is emitted after cancellation is observed. One fetch is in
// flight at a time. A panic inside the loop surfaces as StatusFailed
// on this engine only.
func (e *Engine) Run(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome)

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				e.emit(ctx, out, Outcome{Status: StatusFailed, Err: fmt.Errorf("wait loop panic: %v", r)})
			}
		}()

		scheduler := NewScheduler(e.interval)
		for {
			if err := scheduler.Wait(ctx); err != nil {
				return
			}

			outcome, terminal := e.tick(ctx)
			if !e.emit(ctx, out, outcome) {
				return
			}
			if terminal {
				return
			}
		}
	}()

	return out
}

// tick runs one fetch-and-evaluate cycle. The bool reports whether the
// outcome is terminal.
func (e *Engine) tick(ctx context.Context) (Outcome, bool) {
	set, err := e.fetcher.FetchSailings(ctx, e.route, e.date)
	switch {
	case err == nil:
	case errors.Is(err, api.ErrDecode):
		// Transient provider hiccup; no data this round.
		e.logger.Debug("undecodable events response, still waiting", "sailing", e.sailingID)
		return Outcome{Status: StatusWaiting}, false
	default:
		// Transport failures, and anything unclassified, are fatal.
		e.logger.Debug("events fetch failed", "sailing", e.sailingID, "err", err)
		return Outcome{Status: StatusFailed, Err: err}, true
	}

	sailing, ok := set[e.sailingID]
	if !ok {
		// Sailings disappear from snapshots and come back; keep going.
		e.logger.Debug("sailing missing from snapshot, still waiting", "sailing", e.sailingID)
		return Outcome{Status: StatusWaiting}, false
	}

	if sailing.HasSmallVehicleSpace() {
		e.logger.Debug("capacity found", "sailing", e.sailingID, "spots", sailing.Capacities.SmallVehicles)
		return Outcome{Status: StatusFound, Spots: sailing.Capacities.SmallVehicles}, true
	}

	return Outcome{Status: StatusWaiting}, false
}

// emit delivers an outcome unless cancellation has been observed.
func (e *Engine) emit(ctx context.Context, out chan<- Outcome, outcome Outcome) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- outcome:
		return true
	case <-ctx.Done():
		return false
	}
}

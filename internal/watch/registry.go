package watch

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paat-dev/paat/internal/models"
)

// Update is one delivery from a tracked sailing's engine.
type Update struct {
	SailingID string
	Outcome   Outcome
}

// TrackedSailing is the visible state of one registry entry. It is
// owned by the registry; Snapshot returns copies.
type TrackedSailing struct {
	Route   models.Route
	Date    time.Time
	Sailing models.Sailing
	Polls   int   // completed fetch cycles
	Spots   int   // resolved capacity, valid once Found
	Found   bool  // engine reached StatusFound
	Err     error // engine reached StatusFailed
}

// Finished reports whether the entry's engine reached a terminal state.
func (t *TrackedSailing) Finished() bool {
	return t.Found || t.Err != nil
}

type entry struct {
	state  TrackedSailing
	cancel context.CancelFunc
}

// Registry runs one wait engine per tracked sailing and fans their
// outcomes into a single update feed keyed by sailing uid. Delivery is
// last-write-wins per key: when the consumer lags, a newer pending
// update for a sailing replaces the older one, and keys never
// interfere with each other.
type Registry struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *log.Logger

	baseCtx context.Context
	stop    context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	pending map[string]Update
	order   []string // pending keys, oldest first
	closed  bool

	wake    chan struct{}
	updates chan Update
	wg      sync.WaitGroup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryInterval sets the poll interval for engines the registry
// starts.
func WithRegistryInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRegistryLogger attaches a logger passed through to engines.
func WithRegistryLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry and starts its dispatcher.
func NewRegistry(fetcher Fetcher, opts ...RegistryOption) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		fetcher:  fetcher,
		interval: DefaultPollInterval,
		logger:   log.New(io.Discard),
		baseCtx:  ctx,
		stop:     cancel,
		entries:  make(map[string]*entry),
		pending:  make(map[string]Update),
		wake:     make(chan struct{}, 1),
		updates:  make(chan Update),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.dispatch()

	return r
}

// Updates is the merged outcome feed. It closes when the registry is
// stopped. No ordering is guaranteed across sailings.
func (r *Registry) Updates() <-chan Update {
	return r.updates
}

// Track starts a wait engine for the sailing. Idempotent per uid: a
// sailing that is already tracked is not started twice, and false is
// returned.
func (r *Registry) Track(route models.Route, date time.Time, sailing models.Sailing) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if _, exists := r.entries[sailing.UID]; exists {
		r.mu.Unlock()
		return false
	}

	ctx, cancel := context.WithCancel(r.baseCtx)
	r.entries[sailing.UID] = &entry{
		state: TrackedSailing{
			Route:   route,
			Date:    date,
			Sailing: sailing,
		},
		cancel: cancel,
	}
	r.mu.Unlock()

	engine := NewEngine(r.fetcher, route, date, sailing.UID,
		WithInterval(r.interval), WithLogger(r.logger))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for outcome := range engine.Run(ctx) {
			r.record(sailing.UID, outcome)
		}
	}()

	return true
}

// record folds an engine outcome into the entry state and queues it
// for delivery, replacing any still-pending update for the same uid.
// An outcome for a sailing that was cleared while in flight is dropped;
// removed means gone.
func (r *Registry) record(uid string, outcome Outcome) {
	r.mu.Lock()
	ent, ok := r.entries[uid]
	if !ok {
		r.mu.Unlock()
		return
	}
	ent.state.Polls++
	switch outcome.Status {
	case StatusFound:
		ent.state.Found = true
		ent.state.Spots = outcome.Spots
	case StatusFailed:
		ent.state.Err = outcome.Err
	}
	if ent.state.Finished() {
		// The engine has stopped on its own; release its context.
		ent.cancel()
	}

	if _, queued := r.pending[uid]; !queued {
		r.order = append(r.order, uid)
	}
	r.pending[uid] = Update{SailingID: uid, Outcome: outcome}
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// dispatch drains pending updates to the feed, one at a time.
func (r *Registry) dispatch() {
	defer r.wg.Done()
	defer close(r.updates)

	for {
		select {
		case <-r.baseCtx.Done():
			return
		case <-r.wake:
		}

		for {
			r.mu.Lock()
			if len(r.order) == 0 {
				r.mu.Unlock()
				break
			}
			uid := r.order[0]
			r.order = r.order[1:]
			update := r.pending[uid]
			delete(r.pending, uid)
			r.mu.Unlock()

			select {
			case r.updates <- update:
			case <-r.baseCtx.Done():
				return
			}
		}
	}
}

// Snapshot returns the tracked sailings ordered by departure time
// ascending (entries with unparseable times last).
func (r *Registry) Snapshot() []TrackedSailing {
	r.mu.Lock()
	tracked := make([]TrackedSailing, 0, len(r.entries))
	for _, ent := range r.entries {
		tracked = append(tracked, ent.state)
	}
	r.mu.Unlock()

	sort.Slice(tracked, func(i, j int) bool {
		ti, errI := tracked[i].Sailing.StartTime()
		tj, errJ := tracked[j].Sailing.StartTime()
		switch {
		case errI == nil && errJ == nil:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return tracked[i].Sailing.UID < tracked[j].Sailing.UID
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return tracked[i].Sailing.UID < tracked[j].Sailing.UID
		}
	})
	return tracked
}

// Len returns the number of tracked sailings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ClearAll removes every entry, cancelling engines that still run.
func (r *Registry) ClearAll() {
	r.clear(func(*TrackedSailing) bool { return true })
}

// ClearFinished removes entries whose engine reached a terminal state.
// Those engines have already stopped, so nothing is cancelled.
func (r *Registry) ClearFinished() {
	r.clear(func(t *TrackedSailing) bool { return t.Finished() })
}

// ClearUnfinished removes entries that are still waiting, cancelling
// their engines so no orphaned polling survives.
func (r *Registry) ClearUnfinished() {
	r.clear(func(t *TrackedSailing) bool { return !t.Finished() })
}

func (r *Registry) clear(match func(*TrackedSailing) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, ent := range r.entries {
		if !match(&ent.state) {
			continue
		}
		if !ent.state.Finished() {
			ent.cancel()
		}
		delete(r.entries, uid)
	}
}

// Stop cancels every engine, closes the update feed and waits for all
// goroutines to drain. The registry cannot be reused afterwards.
func (r *Registry) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.stop()
	r.wg.Wait()
}

package watch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/testutil"
)

const testInterval = 5 * time.Millisecond

// fetchResult is one scripted round trip.
type fetchResult struct {
	set models.SailingSet
	err error
}

// scriptedFetcher replays fetch results in order; the last one repeats.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []fetchResult
	calls int
}

func (f *scriptedFetcher) FetchSailings(ctx context.Context, route models.Route, date time.Time) (models.SailingSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	f.calls++
	return f.steps[idx].set, f.steps[idx].err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func setWithCapacity(uid string, smallVehicles int) models.SailingSet {
	return models.SailingSet{
		uid: models.Sailing{
			UID:        uid,
			Capacities: models.Capacity{SmallVehicles: smallVehicles},
		},
	}
}

func collectOutcomes(t *testing.T, out <-chan Outcome, want int) []Outcome {
	t.Helper()

	var got []Outcome
	deadline := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case outcome, ok := <-out:
			if !ok {
				t.Fatalf("outcome channel closed after %d of %d outcomes", len(got), want)
			}
			got = append(got, outcome)
		case <-deadline:
			t.Fatalf("timed out after %d of %d outcomes", len(got), want)
		}
	}
	return got
}

func awaitClose(t *testing.T, out <-chan Outcome) {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case outcome, ok := <-out:
			if !ok {
				return
			}
			t.Fatalf("unexpected outcome after terminal state: %+v", outcome)
		case <-deadline:
			t.Fatal("outcome channel never closed")
		}
	}
}

func TestEngine_CapacityOnFirstFetch(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("abc", 12)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 1)

	testutil.AssertEqual(t, StatusFound, got[0].Status)
	testutil.AssertEqual(t, 12, got[0].Spots)
	awaitClose(t, out)
}

func TestEngine_WaitsUntilCapacityAppears(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("abc", 0)},
		{set: setWithCapacity("abc", 0)},
		{set: setWithCapacity("abc", 3)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 3)

	testutil.AssertEqual(t, StatusWaiting, got[0].Status)
	testutil.AssertEqual(t, StatusWaiting, got[1].Status)
	testutil.AssertEqual(t, StatusFound, got[2].Status)
	testutil.AssertEqual(t, 3, got[2].Spots)
	awaitClose(t, out)
}

func TestEngine_NegativeCapacityIsNotFound(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("abc", -2)},
		{set: setWithCapacity("abc", 1)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 2)

	testutil.AssertEqual(t, StatusWaiting, got[0].Status)
	testutil.AssertEqual(t, StatusFound, got[1].Status)
	testutil.AssertEqual(t, 1, got[1].Spots)
	awaitClose(t, out)
}

func TestEngine_MissingSailingKeepsWaiting(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("other", 50)},
		{set: setWithCapacity("abc", 7)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 2)

	testutil.AssertEqual(t, StatusWaiting, got[0].Status)
	testutil.AssertEqual(t, StatusFound, got[1].Status)
	awaitClose(t, out)
}

func TestEngine_DecodeErrorIsNonFatal(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{err: api.NewDecodeError(errors.New("invalid character '<'"))},
		{set: setWithCapacity("abc", 5)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 2)

	testutil.AssertEqual(t, StatusWaiting, got[0].Status)
	testutil.AssertNil(t, got[0].Err)
	testutil.AssertEqual(t, StatusFound, got[1].Status)
	awaitClose(t, out)
}

func TestEngine_TransportErrorIsFatal(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{err: api.NewTransportError(api.EndpointEvents, 503, nil)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 1)

	testutil.AssertEqual(t, StatusFailed, got[0].Status)
	testutil.AssertErrorIs(t, got[0].Err, api.ErrTransport)
	awaitClose(t, out)

	// No fetch happens after the fatal outcome.
	testutil.AssertEqual(t, 1, fetcher.callCount())
}

func TestEngine_UnclassifiedErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &scriptedFetcher{steps: []fetchResult{{err: boom}}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 1)

	testutil.AssertEqual(t, StatusFailed, got[0].Status)
	testutil.AssertErrorIs(t, got[0].Err, boom)
	awaitClose(t, out)
}

func TestEngine_CancellationStopsEmission(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("abc", 0)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	ctx, cancel := context.WithCancel(context.Background())
	out := engine.Run(ctx)

	collectOutcomes(t, out, 2) // loop is alive
	cancel()
	awaitClose(t, out)
}

func TestEngine_CancelBeforeRun(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchResult{
		{set: setWithCapacity("abc", 9)},
	}}
	engine := NewEngine(fetcher, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	awaitClose(t, engine.Run(ctx))
}

// panickyFetcher blows up on every call.
type panickyFetcher struct{}

func (panickyFetcher) FetchSailings(context.Context, models.Route, time.Time) (models.SailingSet, error) {
	panic("fetcher bug")
}

func TestEngine_PanicSurfacesAsFailed(t *testing.T) {
	engine := NewEngine(panickyFetcher{}, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 1)

	testutil.AssertEqual(t, StatusFailed, got[0].Status)
	testutil.AssertError(t, got[0].Err)
	testutil.AssertContains(t, got[0].Err.Error(), "fetcher bug")
	awaitClose(t, out)
}

func TestEngine_AgainstHTTPClient(t *testing.T) {
	server := testutil.NewSequenceServer(
		testutil.ScriptedResponse{Status: http.StatusOK, Body: testutil.SampleMalformedEventsResponse},
		testutil.ScriptedResponse{Status: http.StatusOK, Body: testutil.EventsBody("abc", 0)},
		testutil.ScriptedResponse{Status: http.StatusOK, Body: testutil.EventsBody("abc", 4)},
	)
	defer server.Close()

	client := api.NewClient(api.WithBaseURL(server.URL))
	engine := NewEngine(client, models.RouteHR, time.Now(), "abc", WithInterval(testInterval))

	out := engine.Run(context.Background())
	got := collectOutcomes(t, out, 3)

	testutil.AssertEqual(t, StatusWaiting, got[0].Status) // garbage body
	testutil.AssertEqual(t, StatusWaiting, got[1].Status) // sold out
	testutil.AssertEqual(t, StatusFound, got[2].Status)
	testutil.AssertEqual(t, 4, got[2].Spots)
	awaitClose(t, out)
}

func TestStatus_String(t *testing.T) {
	testutil.AssertEqual(t, "waiting", StatusWaiting.String())
	testutil.AssertEqual(t, "found", StatusFound.String())
	testutil.AssertEqual(t, "failed", StatusFailed.String())
	testutil.AssertEqual(t, "status(42)", Status(42).String())
}

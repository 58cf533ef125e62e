package poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

type mapKV struct {
	values map[string][]byte
	getErr error
	setErr error
}

func newMapKV() *mapKV {
	return &mapKV{values: make(map[string][]byte)}
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	data, ok := m.values[key]
	return data, ok, nil
}

func (m *mapKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

type fakeProber struct {
	open  bool
	err   error
	calls int
}

func (p *fakeProber) IsOpen(context.Context) (bool, error) {
	p.calls++
	return p.open, p.err
}

type fakeQuerier struct {
	symbols []string
	err     error
	calls   int
}

func (q *fakeQuerier) TopGainers(context.Context) ([]string, error) {
	q.calls++
	return q.symbols, q.err
}

type fixture struct {
	loop    *Loop
	kv      *mapKV
	store   *gainers.Store
	prober  *fakeProber
	querier *fakeQuerier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	kv := newMapKV()
	store := gainers.NewStore(kv)
	log := logger.NewNop()
	prober := &fakeProber{open: true}
	querier := &fakeQuerier{}

	loop := New(
		Config{Location: loc, Tick: 10 * time.Second, OpTimeout: time.Second},
		store,
		gainers.NewConsolidator(store, log),
		NewReporter(kv, log),
		prober,
		querier,
		log,
	)

	return &fixture{loop: loop, kv: kv, store: store, prober: prober, querier: querier}
}

func (f *fixture) at(t *testing.T, at time.Time) time.Duration {
	t.Helper()
	f.loop.now = func() time.Time { return at }
	return f.loop.iterate(context.Background())
}

func (f *fixture) status(t *testing.T) StatusRecord {
	t.Helper()
	data, ok := f.kv.values["status"]
	if !ok {
		t.Fatal("expected a status record in the store")
	}
	var rec StatusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return rec
}

func mondayAt(t *testing.T, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2025, 1, 6, hour, min, 0, 0, loc)
}

func TestOpenTickIngestsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	f.querier.symbols = []string{"AAA", "BBB", "AAA"}

	wait := f.at(t, mondayAt(t, 10, 0))

	if wait <= 0 || wait > 10*time.Second {
		t.Errorf("expected short tick wait, got %s", wait)
	}

	snap, err := f.store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 snapshot records, got %d", len(snap))
	}
	if snap[0].Symbol != "AAA" || snap[1].Symbol != "BBB" {
		t.Errorf("expected [AAA BBB], got [%s %s]", snap[0].Symbol, snap[1].Symbol)
	}

	if got := f.status(t); got.Phase != StatusAlive {
		t.Errorf("expected alive status, got %s", got.Phase)
	}
}

func TestProbeFailureSkipsQuery(t *testing.T) {
	f := newFixture(t)
	f.prober.err = errors.New("probe timeout")
	f.querier.symbols = []string{"AAA"}

	f.at(t, mondayAt(t, 10, 0))

	if f.querier.calls != 0 {
		t.Errorf("expected no query after probe failure, got %d calls", f.querier.calls)
	}
	if !f.loop.acc.Empty() {
		t.Error("expected empty accumulator after probe failure")
	}
	if got := f.status(t); got.Phase != StatusAlive {
		t.Errorf("expected alive status, got %s", got.Phase)
	}
}

func TestProbeClosedSkipsQuery(t *testing.T) {
	f := newFixture(t)
	f.prober.open = false
	f.querier.symbols = []string{"AAA"}

	f.at(t, mondayAt(t, 10, 0))

	if f.querier.calls != 0 {
		t.Errorf("expected no query when probe reports closed, got %d calls", f.querier.calls)
	}
}

func TestQueryFailureTreatedAsNoHits(t *testing.T) {
	f := newFixture(t)
	f.querier.err = errors.New("screener unavailable")

	wait := f.at(t, mondayAt(t, 10, 0))

	if !f.loop.acc.Empty() {
		t.Error("expected empty accumulator after query failure")
	}
	if wait <= 0 || wait > 10*time.Second {
		t.Errorf("expected short tick wait, got %s", wait)
	}
}

func TestSessionEndConsolidates(t *testing.T) {
	f := newFixture(t)
	f.querier.symbols = []string{"AAA", "BBB"}

	// Accumulate during the open session, then cross the close
	f.at(t, mondayAt(t, 10, 0))
	f.at(t, mondayAt(t, 16, 30))

	if !f.loop.acc.Empty() {
		t.Error("expected accumulator drained after consolidation")
	}

	ledger, err := f.store.Ledger(context.Background())
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("expected 2 ledger records, got %d", len(ledger))
	}

	if _, ok := f.kv.values[gainers.KeySnapshot]; ok {
		t.Error("expected session snapshot cleared after consolidation")
	}
}

func TestConsolidationFailurePreservesAccumulator(t *testing.T) {
	f := newFixture(t)
	f.querier.symbols = []string{"AAA"}

	f.at(t, mondayAt(t, 10, 0))

	// Store down at session end
	f.kv.setErr = errors.New("connection refused")
	f.at(t, mondayAt(t, 16, 30))

	if f.loop.acc.Empty() {
		t.Fatal("expected accumulator preserved after store failure")
	}

	// Store recovers; the next tick retries with the same data
	f.kv.setErr = nil
	f.at(t, mondayAt(t, 16, 30).Add(10*time.Second))

	if !f.loop.acc.Empty() {
		t.Error("expected accumulator drained after successful retry")
	}

	ledger, err := f.store.Ledger(context.Background())
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(ledger) != 1 {
		t.Errorf("expected 1 ledger record, got %d", len(ledger))
	}
}

func TestWeekendIdlePlansLongSleep(t *testing.T) {
	f := newFixture(t)

	loc, _ := time.LoadLocation("America/New_York")
	saturday := time.Date(2025, 1, 4, 10, 0, 0, 0, loc)

	wait := f.at(t, saturday)

	wantWake := time.Date(2025, 1, 6, 9, 25, 0, 0, loc)
	if got := saturday.Add(wait); !got.Equal(wantWake) {
		t.Errorf("expected wake at %s, got %s", wantWake, got)
	}

	if got := f.status(t); got.Phase != StatusSleeping {
		t.Errorf("expected sleeping status, got %s", got.Phase)
	}
}

func TestPreOpenWindowFallsBackToShortTick(t *testing.T) {
	f := newFixture(t)

	wait := f.at(t, mondayAt(t, 9, 27))

	if wait <= 0 || wait > 10*time.Second {
		t.Errorf("expected short tick wait between 09:25 and the bell, got %s", wait)
	}
	if got := f.status(t); got.Phase != StatusAlive {
		t.Errorf("expected alive status, got %s", got.Phase)
	}
}

// Full scenario: duplicated ingestion across ticks, then consolidation into a
// ledger holding a stale same-weekday entry.
func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Prior ledger: a stale Monday-tagged CCC from last week
	loc, _ := time.LoadLocation("America/New_York")
	staleMonday := time.Date(2024, 12, 30, 11, 0, 0, 0, loc)
	if err := f.store.SaveLedger(ctx, []gainers.Record{gainers.NewRecord("CCC", staleMonday)}); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	// Three open ticks with AAA duplicated
	f.querier.symbols = []string{"AAA"}
	f.at(t, mondayAt(t, 10, 0))
	f.querier.symbols = []string{"BBB", "AAA"}
	f.at(t, mondayAt(t, 10, 1))
	f.querier.symbols = []string{"AAA"}
	f.at(t, mondayAt(t, 10, 2))

	if f.loop.acc.Len() != 2 {
		t.Fatalf("expected accumulator [AAA BBB], got %d records", f.loop.acc.Len())
	}

	// Session ends
	f.at(t, mondayAt(t, 16, 30))

	ledger, err := f.store.Ledger(ctx)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}

	symbols := make([]string, 0, len(ledger))
	for _, rec := range ledger {
		symbols = append(symbols, rec.Symbol)
	}

	if len(symbols) != 2 || symbols[0] != "AAA" || symbols[1] != "BBB" {
		t.Errorf("expected ledger [AAA BBB] with CCC purged, got %v", symbols)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

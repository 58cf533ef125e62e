package gainers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/topgainers/pkg/logger"
)

// fakeKV is an in-memory KV with switchable failure modes
type fakeKV struct {
	values  map[string][]byte
	getErr  error
	setErr  error
	setTrip int // Set calls made
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	data, ok := f.values[key]
	return data, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.setTrip++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func sessionRecords(day time.Time, symbols ...string) []Record {
	recs := make([]Record, 0, len(symbols))
	for i, s := range symbols {
		recs = append(recs, NewRecord(s, day.Add(time.Duration(i)*time.Minute)))
	}
	return recs
}

func TestConsolidatePurgesSameWeekdayGeneration(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	// Prior week's Monday entry plus a Tuesday entry
	monday := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	staleMonday := time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)

	prior := append(sessionRecords(staleMonday, "CCC"), sessionRecords(tuesday, "DDD")...)
	require.NoError(t, store.SaveLedger(ctx, prior))

	// Consolidate a fresh Monday session
	finished := sessionRecords(monday, "AAA", "BBB")
	require.NoError(t, con.Consolidate(ctx, finished))

	ledger, err := store.Ledger(ctx)
	require.NoError(t, err)

	symbols := make([]string, 0, len(ledger))
	for _, rec := range ledger {
		symbols = append(symbols, rec.Symbol)
	}

	// Stale Monday CCC purged, Tuesday DDD untouched, new session appended in order
	assert.Equal(t, []string{"DDD", "AAA", "BBB"}, symbols)
}

func TestConsolidateEmptySessionIsNoOp(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	prior := sessionRecords(time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC), "DDD")
	require.NoError(t, store.SaveLedger(ctx, prior))
	writesBefore := kv.setTrip

	require.NoError(t, con.Consolidate(ctx, nil))
	require.NoError(t, con.Consolidate(ctx, []Record{}))

	assert.Equal(t, writesBefore, kv.setTrip, "empty session must not touch the ledger")

	ledger, err := store.Ledger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestConsolidateIntoAbsentLedger(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	finished := sessionRecords(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), "AAA")
	require.NoError(t, con.Consolidate(ctx, finished))

	ledger, err := store.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "AAA", ledger[0].Symbol)
}

func TestConsolidateReadFailureLeavesLedger(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	kv.getErr = errors.New("connection refused")

	finished := sessionRecords(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), "AAA")
	err := con.Consolidate(ctx, finished)
	require.Error(t, err)
	assert.Zero(t, kv.setTrip, "no write after a failed read")
}

func TestConsolidateWriteFailure(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	kv.setErr = errors.New("connection reset")

	finished := sessionRecords(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), "AAA")
	require.Error(t, con.Consolidate(ctx, finished))
}

func TestConsolidateRetryIsIdempotent(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	con := NewConsolidator(store, logger.NewNop())
	ctx := context.Background()

	finished := sessionRecords(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), "AAA", "BBB")

	// At-least-once delivery: the same session consolidated twice converges
	require.NoError(t, con.Consolidate(ctx, finished))
	require.NoError(t, con.Consolidate(ctx, finished))

	ledger, err := store.Ledger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

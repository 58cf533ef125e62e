package gainers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store keys. Each holds one whole JSON value, overwritten on every write.
const (
	KeySnapshot = "todays_gainers" // current session, rewritten every open tick
	KeyLedger   = "gainers_record" // rolling weekly ledger
	KeyStatus   = "status"         // poller liveness record
)

// KV is the minimal contract this package needs from the external store.
// Get's second return is false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes gainer records through the key/value store
type Store struct {
	kv KV
}

// NewStore creates a store over the given key/value backend
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Snapshot returns the current session snapshot; absent means empty
func (s *Store) Snapshot(ctx context.Context) ([]Record, error) {
	return s.load(ctx, KeySnapshot)
}

// SaveSnapshot overwrites the current session snapshot
func (s *Store) SaveSnapshot(ctx context.Context, records []Record) error {
	return s.save(ctx, KeySnapshot, records)
}

// ClearSnapshot removes the session snapshot once its records have been
// consolidated into the ledger
func (s *Store) ClearSnapshot(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeySnapshot); err != nil {
		return fmt.Errorf("clear %s: %w", KeySnapshot, err)
	}
	return nil
}

// Ledger returns the weekly ledger; absent means empty
func (s *Store) Ledger(ctx context.Context) ([]Record, error) {
	return s.load(ctx, KeyLedger)
}

// SaveLedger overwrites the weekly ledger as one value
func (s *Store) SaveLedger(ctx context.Context, records []Record) error {
	return s.save(ctx, KeyLedger, records)
}

func (s *Store) load(ctx context.Context, key string) ([]Record, error) {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	return records, nil
}

func (s *Store) save(ctx context.Context, key string, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	return nil
}

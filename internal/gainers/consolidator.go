package gainers

import (
	"context"

	"github.com/wonny/topgainers/pkg/logger"
)

// Consolidator merges a finished session into the weekly ledger. The ledger
// keeps at most one generation of records per weekday tag: consolidating a
// Monday session first purges every Monday-tagged entry left from a prior
// week, then appends the new records. That purge makes a repeated
// consolidation of the same session idempotent, so callers may safely retry
// after a store failure.
//
// Known limitation: the purge keys on the bare weekday name, and the
// read-purge-write sequence is not guarded by a compare-and-swap. A single
// writer is assumed; concurrent poller instances could lose updates.
type Consolidator struct {
	store  *Store
	logger *logger.Logger
}

// NewConsolidator creates a consolidator writing through the given store
func NewConsolidator(store *Store, log *logger.Logger) *Consolidator {
	return &Consolidator{
		store:  store,
		logger: log,
	}
}

// Consolidate merges finished into the ledger. An empty session is a no-op.
// On error the ledger is untouched and the caller keeps its records for the
// next attempt.
func (c *Consolidator) Consolidate(ctx context.Context, finished []Record) error {
	if len(finished) == 0 {
		return nil
	}

	// All records in one session share a date, so the tag of the first one
	// is the session's tag.
	tag := finished[0].Day

	ledger, err := c.store.Ledger(ctx)
	if err != nil {
		return err
	}

	// Purge the stale generation for this weekday, keep everything else
	kept := make([]Record, 0, len(ledger)+len(finished))
	purged := 0
	for _, rec := range ledger {
		if rec.Day == tag {
			purged++
			continue
		}
		kept = append(kept, rec)
	}

	kept = append(kept, finished...)

	if err := c.store.SaveLedger(ctx, kept); err != nil {
		return err
	}

	c.logger.WithFields(map[string]interface{}{
		"day":    tag,
		"added":  len(finished),
		"purged": purged,
		"ledger": len(kept),
	}).Info("Session consolidated into weekly ledger")

	return nil
}

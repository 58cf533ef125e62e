package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// Status phases visible to external observers
const (
	StatusAlive    = "alive"
	StatusSleeping = "sleeping"
)

const readableLayout = "01-02-06 03:04:05.000000 PM MST"

// StatusRecord is the poller's published liveness record. Overwritten on
// every loop iteration, never accumulated.
type StatusRecord struct {
	Phase          string `json:"phase"` // "alive" or "sleeping"
	SinceTimestamp int64  `json:"since_timestamp"`
	SinceISO       string `json:"since_iso"`
	SinceReadable  string `json:"since_readable"`
}

// Reporter publishes the loop's liveness record to the store
type Reporter struct {
	kv     gainers.KV
	logger *logger.Logger
}

// NewReporter creates a status reporter writing through the given store
func NewReporter(kv gainers.KV, log *logger.Logger) *Reporter {
	return &Reporter{
		kv:     kv,
		logger: log,
	}
}

// Publish overwrites the status record with the given phase and instant
func (r *Reporter) Publish(ctx context.Context, phase string, at time.Time) error {
	rec := StatusRecord{
		Phase:          phase,
		SinceTimestamp: at.Unix(),
		SinceISO:       at.Format(time.RFC3339Nano),
		SinceReadable:  at.Format(readableLayout),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	if err := r.kv.Set(ctx, gainers.KeyStatus, data); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	return nil
}

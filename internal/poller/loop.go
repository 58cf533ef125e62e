// Package poller drives the top-gainers polling loop: a single sequential
// worker that queries the screener during the open session, consolidates the
// finished session into the weekly ledger, and sleeps through nights and
// weekends. No error is fatal; the loop only exits when its context is
// cancelled.
package poller

import (
	"context"
	"time"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/internal/market"
	"github.com/wonny/topgainers/pkg/logger"
)

// MarketProber reports whether the market is actually trading right now.
// A probe error is treated as "not open".
type MarketProber interface {
	IsOpen(ctx context.Context) (bool, error)
}

// Querier fetches the current top gainer symbols
type Querier interface {
	TopGainers(ctx context.Context) ([]string, error)
}

// Config holds the loop's timing parameters
type Config struct {
	// Location is the exchange timezone all session math runs in
	Location *time.Location

	// Tick is the polling cadence wake-ups are aligned to
	Tick time.Duration

	// OpTimeout bounds each blocking call (probe, query, store round-trip)
	// so a stalled collaborator cannot stretch the tick cadence
	OpTimeout time.Duration
}

// Loop is the polling state machine. It exclusively owns the session
// accumulator; everything else reaches the loop's data through the store.
type Loop struct {
	cfg          Config
	acc          *gainers.Accumulator
	store        *gainers.Store
	consolidator *gainers.Consolidator
	reporter     *Reporter
	prober       MarketProber
	querier      Querier
	logger       *logger.Logger

	now func() time.Time
}

// New creates a polling loop
func New(cfg Config, store *gainers.Store, con *gainers.Consolidator, rep *Reporter,
	prober MarketProber, querier Querier, log *logger.Logger) *Loop {

	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}

	return &Loop{
		cfg:          cfg,
		acc:          gainers.NewAccumulator(),
		store:        store,
		consolidator: con,
		reporter:     rep,
		prober:       prober,
		querier:      querier,
		logger:       log,
		now:          time.Now,
	}
}

// Run executes the loop until ctx is cancelled. The first iteration waits for
// the next tick boundary so queries land on a stable cadence from the start.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.WithFields(map[string]interface{}{
		"tick":     l.cfg.Tick,
		"timezone": l.cfg.Location.String(),
	}).Info("Polling loop starting")

	// Aligning: one-time startup tick alignment
	if err := l.sleep(ctx, market.NextTickDelay(l.now(), l.cfg.Tick)); err != nil {
		return err
	}

	for {
		wait := l.iterate(ctx)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// iterate runs one polling pass and returns how long to sleep before the
// next one. Every pass re-classifies the session from the wall clock; no
// state is assumed across sleeps.
func (l *Loop) iterate(ctx context.Context) time.Duration {
	now := l.now().In(l.cfg.Location)
	phase := market.Classify(now)

	switch {
	case phase == market.PhaseOpen:
		// Clock window alone is not enough: holidays and halts only show
		// up in the live status probe.
		if l.marketOpen(ctx) {
			l.poll(ctx, now)
		}
		l.publish(ctx, StatusAlive, now)

	case !l.acc.Empty():
		// Session just ended; fold it into the weekly ledger
		l.consolidate(ctx)
		l.publish(ctx, StatusAlive, now)

	default:
		// Idle outside trading hours
		if target, ok := market.NextWake(now); ok {
			l.publish(ctx, StatusSleeping, now)
			l.logger.WithFields(map[string]interface{}{
				"phase":     phase.String(),
				"wake_at":   target,
				"sleep_for": target.Sub(now),
			}).Info("Sleeping until next session")
			return target.Sub(now)
		}
		l.publish(ctx, StatusAlive, now)
	}

	return market.NextTickDelay(l.now(), l.cfg.Tick)
}

// marketOpen runs the live status probe; errors downgrade to closed
func (l *Loop) marketOpen(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, l.cfg.OpTimeout)
	defer cancel()

	open, err := l.prober.IsOpen(pctx)
	if err != nil {
		l.logger.WithError(err).Warn("Market status probe failed, treating as closed")
		return false
	}

	return open
}

// poll queries the screener, folds new symbols into the session accumulator
// and rewrites the session snapshot in the store
func (l *Loop) poll(ctx context.Context, now time.Time) {
	qctx, cancel := context.WithTimeout(ctx, l.cfg.OpTimeout)
	symbols, err := l.querier.TopGainers(qctx)
	cancel()
	if err != nil {
		// No hits this tick; the next tick tries again
		l.logger.WithError(err).Warn("Gainer query failed, treating as no hits")
		symbols = nil
	}

	if added := l.acc.Ingest(symbols, now); added > 0 {
		l.logger.WithFields(map[string]interface{}{
			"added": added,
			"total": l.acc.Len(),
		}).Info("New gainers observed")
	}

	sctx, cancel := context.WithTimeout(ctx, l.cfg.OpTimeout)
	defer cancel()
	if err := l.store.SaveSnapshot(sctx, l.acc.Records()); err != nil {
		l.logger.WithError(err).Error("Failed to write session snapshot")
	}
}

// consolidate merges the finished session into the weekly ledger. The
// accumulator is only drained after a successful write, so a store failure
// retries with the same data on the next tick.
func (l *Loop) consolidate(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, l.cfg.OpTimeout)
	defer cancel()

	if err := l.consolidator.Consolidate(cctx, l.acc.Records()); err != nil {
		l.logger.WithError(err).Error("Consolidation failed, keeping session data for retry")
		return
	}

	drained := l.acc.Drain()

	// The session is in the ledger now; drop its snapshot key
	if err := l.store.ClearSnapshot(cctx); err != nil {
		l.logger.WithError(err).Error("Failed to clear session snapshot")
	}

	l.logger.WithField("records", len(drained)).Info("Session closed")
}

// publish overwrites the status record; store failures are logged, not fatal
func (l *Loop) publish(ctx context.Context, phase string, now time.Time) {
	pctx, cancel := context.WithTimeout(ctx, l.cfg.OpTimeout)
	defer cancel()

	if err := l.reporter.Publish(pctx, phase, now); err != nil {
		l.logger.WithError(err).Error("Failed to publish status")
	}
}

// sleep waits for d or until ctx is cancelled
func (l *Loop) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

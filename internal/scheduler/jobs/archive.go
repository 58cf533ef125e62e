package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/topgainers/internal/archive"
	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// ArchiveJob copies the weekly ledger into the Postgres archive after each
// session close. The ledger itself keeps rotating; the archive is the
// long-term record.
type ArchiveJob struct {
	store    *gainers.Store
	repo     *archive.Repository
	location *time.Location
	logger   *logger.Logger
}

// NewArchiveJob creates a new ledger archive job
func NewArchiveJob(store *gainers.Store, repo *archive.Repository, loc *time.Location, log *logger.Logger) *ArchiveJob {
	return &ArchiveJob{
		store:    store,
		repo:     repo,
		location: loc,
		logger:   log,
	}
}

// Name returns the job name
func (j *ArchiveJob) Name() string {
	return "ledger_archive"
}

// Schedule runs 30 minutes after the close on trading days
func (j *ArchiveJob) Schedule() string {
	return "0 30 16 * * MON-FRI"
}

// Run archives the current ledger contents
func (j *ArchiveJob) Run(ctx context.Context) error {
	records, err := j.store.Ledger(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	if len(records) == 0 {
		j.logger.Debug("Ledger empty, nothing to archive")
		return nil
	}

	if err := j.repo.SaveBatch(ctx, records, j.location); err != nil {
		return fmt.Errorf("archive ledger: %w", err)
	}

	j.logger.WithField("records", len(records)).Info("Ledger archived")
	return nil
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/topgainers/internal/archive"
	"github.com/wonny/topgainers/pkg/logger"
)

// defaultRetention keeps roughly two years of archive rows
const defaultRetention = 730 * 24 * time.Hour

// RetentionJob prunes old rows from the Postgres archive
type RetentionJob struct {
	repo      *archive.Repository
	retention time.Duration
	logger    *logger.Logger
}

// NewRetentionJob creates a new archive retention job
func NewRetentionJob(repo *archive.Repository, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		repo:      repo,
		retention: defaultRetention,
		logger:    log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "archive_retention"
}

// Schedule runs early Sunday morning, outside market hours
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * SUN"
}

// Run deletes archive rows older than the retention window
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune archive: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cutoff":  cutoff.Format("2006-01-02"),
		"deleted": deleted,
	}).Info("Archive retention applied")
	return nil
}

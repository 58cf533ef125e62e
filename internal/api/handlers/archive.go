package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// ArchiveReader is the slice of the archive repository this handler reads
type ArchiveReader interface {
	GetByDateRange(ctx context.Context, from, to time.Time) ([]gainers.Record, error)
}

// ArchiveHandler serves historical gainers out of the Postgres archive
type ArchiveHandler struct {
	repo   ArchiveReader
	logger *logger.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(repo ArchiveReader, log *logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		repo:   repo,
		logger: log,
	}
}

const archiveDateLayout = "2006-01-02"

// Range returns archived gainers observed within a date range. Defaults to
// the trailing week when no bounds are given.
// GET /api/gainers/archive?from=2025-01-06&to=2025-01-10
func (h *ArchiveHandler) Range(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(archiveDateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = parsed
		from = to.AddDate(0, 0, -7)
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(archiveDateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}

	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	records, err := h.repo.GetByDateRange(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read gainer archive")
		writeError(w, http.StatusServiceUnavailable, "archive unavailable")
		return
	}

	writeRecords(w, records)
}

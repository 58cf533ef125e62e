package handlers

import (
	"net/http"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// StatusHandler serves the poller's published liveness record
type StatusHandler struct {
	kv     gainers.KV
	logger *logger.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(kv gainers.KV, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		kv:     kv,
		logger: log,
	}
}

// Status returns the poller's last published status record
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	data, found, err := h.kv.Get(r.Context(), gainers.KeyStatus)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read status record")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	if !found {
		writeError(w, http.StatusNotFound, "poller has not published a status yet")
		return
	}

	// The stored value is already JSON; pass it through untouched
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// GainersHandler serves the session snapshot and the weekly ledger
type GainersHandler struct {
	store  *gainers.Store
	logger *logger.Logger
}

// NewGainersHandler creates a new gainers handler
func NewGainersHandler(store *gainers.Store, log *logger.Logger) *GainersHandler {
	return &GainersHandler{
		store:  store,
		logger: log,
	}
}

// gainersResponse wraps a record list for the API
type gainersResponse struct {
	Count   int              `json:"count"`
	Gainers []gainers.Record `json:"gainers"`
}

// Today returns the current session's gainers
// GET /api/gainers/today
func (h *GainersHandler) Today(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read session snapshot")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeRecords(w, records)
}

// Week returns the rolling weekly ledger
// GET /api/gainers/week
func (h *GainersHandler) Week(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Ledger(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read weekly ledger")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeRecords(w, records)
}

func writeRecords(w http.ResponseWriter, records []gainers.Record) {
	if records == nil {
		records = []gainers.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(gainersResponse{
		Count:   len(records),
		Gainers: records,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/logger"
)

// StreamHandler pushes status-record changes to websocket clients. Each
// client gets the current record on connect and a new frame whenever the
// stored value changes; the store stays the only channel between the poller
// and this surface.
type StreamHandler struct {
	kv       gainers.KV
	logger   *logger.Logger
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewStreamHandler creates a new status stream handler
func NewStreamHandler(kv gainers.KV, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		kv:     kv,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		interval: time.Second,
	}
}

// ServeHTTP upgrades the connection and streams status changes
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Status stream client connected")

	// Reader goroutine only exists to detect the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			data, found, err := h.kv.Get(r.Context(), gainers.KeyStatus)
			if err != nil {
				h.logger.WithError(err).Warn("Status stream read failed")
				continue
			}
			if !found || bytes.Equal(data, last) {
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.WithError(err).Debug("Status stream client write failed")
				return
			}
			last = data
		}
	}
}

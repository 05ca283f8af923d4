package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arglo/storefront/internal/signal"
)

const defaultHeartbeat = 15 * time.Second

// SignalHandler streams view refresh signals as server-sent events.
type SignalHandler struct {
	hub       *signal.Hub
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewSignalHandler creates a handler streaming signals from hub.
func NewSignalHandler(hub *signal.Hub, logger *slog.Logger) *SignalHandler {
	return &SignalHandler{hub: hub, heartbeat: defaultHeartbeat, logger: logger}
}

// Stream handles GET /api/v1/signals
func (h *SignalHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signals := h.hub.Listen(ctx)
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("signal stream cannot flush", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			data, err := json.Marshal(sig)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", sig.Kind, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

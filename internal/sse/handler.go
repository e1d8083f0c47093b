package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"charity-events/internal/logger"
)

const heartbeatInterval = 25 * time.Second

type Handler struct {
	Hub       *Hub
	Logger    *logger.Logger
	Heartbeat time.Duration
}

func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	return &Handler{Hub: hub, Logger: log, Heartbeat: heartbeatInterval}
}

// Stream serves the change feed as Server-Sent Events.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	changes := h.Hub.Subscribe(ctx)
	if h.Logger != nil {
		h.Logger.Info("SSE", fmt.Sprintf("Client connected (%d total)", h.Hub.ClientCount()))
	}

	fmt.Fprintf(w, "event: connected\ndata: {\"at\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
	flusher.Flush()

	interval := h.Heartbeat
	if interval <= 0 {
		interval = heartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if h.Logger != nil {
				h.Logger.Info("SSE", "Client disconnected")
			}
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", change.ID, data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

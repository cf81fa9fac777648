package handler

import (
	"fmt"
	"net/http"

	"evote/internal/notifier"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"
)

// EventsHandler streams live tally updates over Server-Sent Events.
type EventsHandler struct {
	hub    *notifier.Hub
	logger *logger.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *notifier.Hub, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{
		hub:    hub,
		logger: logger,
	}
}

// Stream handles GET /api/votes/events. Each committed ballot produces one
// voteUpdate event carrying the full recomputed tally; observers that fall
// behind lose intermediate updates, never the stream.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, apperrors.NewInternalError("Streaming is not supported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates, detach := h.hub.Attach()
	defer detach()

	h.logger.Debug("Observer attached")

	// Comment frame so proxies start forwarding the stream immediately.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Observer disconnected")
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: voteUpdate\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/combat-tracker/pkg/broadcast"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

// keepaliveInterval is how often an idle stream gets a comment line.
const keepaliveInterval = 30 * time.Second

// EventsHandler handles Server-Sent Events (SSE) for live encounter updates
type EventsHandler struct {
	bus       broadcast.Bus
	registry  *tracker.Registry
	logger    *slog.Logger
	keepalive time.Duration
}

// NewEventsHandler creates a new events handler. registry may be nil, in
// which case no snapshot is sent on connect.
func NewEventsHandler(bus broadcast.Bus, registry *tracker.Registry, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:       bus,
		registry:  registry,
		logger:    logger,
		keepalive: keepaliveInterval,
	}
}

// ServeHTTP handles SSE requests for encounter events
// GET /v1/events/encounters/{encounterID}
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for events endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Method not allowed. Only GET is supported.",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 4 || pathParts[0] != "v1" || pathParts[1] != "events" || pathParts[2] != "encounters" ||
		!ValidEncounterID(pathParts[3]) {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Invalid path. Expected /v1/events/encounters/{encounterID}",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	encounterID := pathParts[3]

	sub, err := h.bus.Subscribe(r.Context(), broadcast.Topic(encounterID))
	if err != nil {
		h.logger.Error("Failed to subscribe", "encounter_id", encounterID, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Event stream is not available",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Error("Failed to close subscription", "error", err)
		}
	}()

	h.logger.Info("SSE connection established",
		"encounter_id", encounterID,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	h.sendSSE(w, "connected", map[string]any{
		"encounter_id": encounterID,
		"message":      "Connected to event stream",
	})
	h.sendSnapshot(r.Context(), w, encounterID)

	keepaliveTicker := time.NewTicker(h.keepalive)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "encounter_id", encounterID)
			return

		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			if msg.Type != broadcast.MessageTypeHydrate || msg.Payload == nil {
				continue
			}
			view := tracker.NewView(encounterID, msg.Payload)
			view.Hydrated = true
			h.sendSSE(w, msg.Type, view)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// sendSnapshot sends the current view so a new client does not wait for the
// next change.
func (h *EventsHandler) sendSnapshot(ctx context.Context, w http.ResponseWriter, encounterID string) {
	if h.registry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, hydrateTimeout)
	defer cancel()

	c, err := h.registry.Get(ctx, encounterID)
	if err != nil {
		h.logger.Warn("No snapshot for SSE client", "encounter_id", encounterID, "error", err)
		return
	}
	h.sendSSE(w, broadcast.MessageTypeHydrate, c.View())
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		h.logger.Error("Failed to write event type", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(dataJSON)); err != nil {
		h.logger.Error("Failed to write event data", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

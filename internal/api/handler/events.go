package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/banglascrabble/internal/api/middleware"
	"github.com/mcoot/banglascrabble/internal/broadcast"
	"github.com/mcoot/banglascrabble/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second
)

// Streamer attaches transport clients to session rooms
type Streamer interface {
	NewClient(playerID model.PlayerID) *broadcast.Client
	Attach(ctx context.Context, sessionID model.SessionID, client *broadcast.Client) error
	Detach(sessionID model.SessionID, client *broadcast.Client)
}

// EventsHandler streams session events over server-sent events
type EventsHandler struct {
	streamer Streamer
	logger   *slog.Logger
}

// NewEventsHandler creates a new SSE handler
func NewEventsHandler(streamer Streamer, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		streamer: streamer,
		logger:   logger.With(slog.String("component", "sse")),
	}
}

// Stream handles GET /api/v1/sessions/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := sessionIDFromPath(r)

	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, NewInvalidRequestError("streaming unsupported"))
		return
	}

	client := h.streamer.NewClient(player.ID)
	if err := h.streamer.Attach(r.Context(), id, client); err != nil {
		WriteError(w, err)
		return
	}
	defer h.streamer.Detach(id, client)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	rc := http.NewResponseController(w)
	write := func(p []byte) bool {
		// The stream outlives the server's write timeout
		_ = rc.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := w.Write(p); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.Send():
			if !ok {
				// Hub dropped the client
				h.logger.Debug("sse stream closed by hub",
					slog.String("session_id", string(id)),
					slog.String("client_id", client.ID()))
				return
			}
			frame := make([]byte, 0, len(message)+8)
			frame = append(frame, "data: "...)
			frame = append(frame, message...)
			frame = append(frame, "\n\n"...)
			if !write(frame) {
				return
			}

		case <-ticker.C:
			if !write([]byte(": keepalive\n\n")) {
				return
			}

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

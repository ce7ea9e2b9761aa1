package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/banglascrabble/internal/api/middleware"
	"github.com/mcoot/banglascrabble/internal/api/request"
	"github.com/mcoot/banglascrabble/internal/api/response"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/bot"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/session"
)

// BotRunner adds bots to sessions and plays their turns
type BotRunner interface {
	AddBot(ctx context.Context, sessionID model.SessionID, requestingPlayerID model.PlayerID, strategy string) (*model.Player, error)
	ProcessBotActions(ctx context.Context, sessionID model.SessionID) ([]bot.BotAction, error)
}

// Hinter suggests words formable from a rack
type Hinter interface {
	Suggest(rack []model.Letter, limit int) []dictionary.Suggestion
}

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessions session.ControllerInterface
	bots     BotRunner
	hints    Hinter
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler. bots may be nil.
func NewSessionHandler(sessions session.ControllerInterface, bots BotRunner, hints Hinter, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		bots:     bots,
		hints:    hints,
		logger:   logger.With(slog.String("component", "session-handler")),
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(r.Context(), s.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.SnapshotFromModel(snapshot))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionSummariesFromModel(sessions))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sessions.Snapshot(r.Context(), sessionIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(snapshot))
}

// Join handles POST /api/v1/sessions/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := sessionIDFromPath(r)

	snapshot, err := h.sessions.Join(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(h.afterMutation(r.Context(), id, snapshot)))
}

// SubmitMove handles POST /api/v1/sessions/{id}/moves
func (h *SessionHandler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := sessionIDFromPath(r)

	var req request.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	result, err := h.sessions.SubmitMove(r.Context(), id, player.ID, req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	state := h.afterMutation(r.Context(), id, result.Snapshot)
	response.JSON(w, http.StatusOK, response.MoveResponse{
		Move:  response.MoveFromModel(result.Move),
		State: response.SnapshotFromModel(state),
	})
}

// Preview handles POST /api/v1/sessions/{id}/preview
func (h *SessionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	evaluation, err := h.sessions.Preview(r.Context(), sessionIDFromPath(r), player.ID, req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EvaluationFromModel(evaluation))
}

// Skip handles POST /api/v1/sessions/{id}/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := sessionIDFromPath(r)

	snapshot, err := h.sessions.SkipTurn(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(h.afterMutation(r.Context(), id, snapshot)))
}

// AddBot handles POST /api/v1/sessions/{id}/bots
func (h *SessionHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := sessionIDFromPath(r)

	if h.bots == nil {
		WriteError(w, NewInvalidRequestError("bots are not enabled"))
		return
	}

	var req request.AddBotRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	botPlayer, err := h.bots.AddBot(r.Context(), id, player.ID, req.Strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.runBots(r.Context(), id)
	response.Created(w, response.PlayerFromModel(botPlayer))
}

// Hints handles GET /api/v1/sessions/{id}/hints
func (h *SessionHandler) Hints(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	snapshot, err := h.sessions.Snapshot(r.Context(), sessionIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	member := snapshot.Member(player.ID)
	if member == nil {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.HintsFromModel(h.hints.Suggest(member.Rack, dictionary.MaxSuggestions)))
}

// afterMutation lets bots take any turns they now hold and returns the
// latest state. The original snapshot is returned when no bot moved.
func (h *SessionHandler) afterMutation(ctx context.Context, id model.SessionID, snapshot *model.Snapshot) *model.Snapshot {
	if !h.runBots(ctx, id) {
		return snapshot
	}
	latest, err := h.sessions.Snapshot(ctx, id)
	if err != nil {
		return snapshot
	}
	return latest
}

// runBots plays consecutive bot turns. It reports whether any bot acted.
func (h *SessionHandler) runBots(ctx context.Context, id model.SessionID) bool {
	if h.bots == nil {
		return false
	}

	// Bot turns must complete even if the caller goes away
	actions, err := h.bots.ProcessBotActions(context.WithoutCancel(ctx), id)
	if err != nil {
		h.logger.Error("bot processing failed",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()))
	}
	return len(actions) > 0
}

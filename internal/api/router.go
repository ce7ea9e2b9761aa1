package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/banglascrabble/internal/api/apierr"
	"github.com/mcoot/banglascrabble/internal/api/handler"
	"github.com/mcoot/banglascrabble/internal/api/middleware"
	"github.com/mcoot/banglascrabble/internal/broadcast"
	sharedmw "github.com/mcoot/banglascrabble/internal/middleware"
	"github.com/mcoot/banglascrabble/internal/services/auth"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/session"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       auth.ServiceInterface
	Players           handler.PlayerStore
	SessionController session.ControllerInterface
	BotService        handler.BotRunner // optional
	DictionaryService *dictionary.Service
	TilesService      tiles.ServiceInterface
	Broadcaster       *broadcast.Coordinator
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.Players)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.BotService, cfg.DictionaryService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.Broadcaster, cfg.Logger)
	wsHandler := handler.NewWSHandler(cfg.Broadcaster, cfg.Logger)
	metaHandler := handler.NewMetaHandler(cfg.TilesService, cfg.DictionaryService, cfg.Broadcaster)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := sharedmw.Recovery(cfg.Logger, writePanicError)

	// Logging runs outermost so recovered panics carry the request id
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	// API subrouter
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", metaHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/tiles", metaHandler.Tiles).Methods(http.MethodGet)
	api.HandleFunc("/board/layout", metaHandler.Layout).Methods(http.MethodGet)
	api.HandleFunc("/dictionary/{word}", metaHandler.Word).Methods(http.MethodGet)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	playerProtected.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/join", sessionHandler.Join).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/moves", sessionHandler.SubmitMove).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/preview", sessionHandler.Preview).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/skip", sessionHandler.Skip).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/bots", sessionHandler.AddBot).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/hints", sessionHandler.Hints).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// WebSocket transport
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware)
	ws.HandleFunc("", wsHandler.Serve).Methods(http.MethodGet)

	return r
}

func writePanicError(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

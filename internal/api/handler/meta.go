package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/banglascrabble/internal/api/response"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
)

// WordLookup answers dictionary queries
type WordLookup interface {
	Contains(word string) bool
	IsValidWord(word string) bool
	Meaning(word string) (string, bool)
}

// RoomCounter reports live broadcast rooms
type RoomCounter interface {
	HubCount() int
}

// MetaHandler serves static game data and health
type MetaHandler struct {
	tiles tiles.ServiceInterface
	words WordLookup
	rooms RoomCounter
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(tilesService tiles.ServiceInterface, words WordLookup, rooms RoomCounter) *MetaHandler {
	return &MetaHandler{
		tiles: tilesService,
		words: words,
		rooms: rooms,
	}
}

// Health handles GET /api/v1/health
func (h *MetaHandler) Health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.rooms != nil {
		body["rooms"] = h.rooms.HubCount()
	}
	response.JSON(w, http.StatusOK, body)
}

// Tiles handles GET /api/v1/tiles
func (h *MetaHandler) Tiles(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.TilesFromModel(h.tiles.Letters()))
}

// Layout handles GET /api/v1/board/layout
func (h *MetaHandler) Layout(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.LayoutFromModel(board.Layout()))
}

// Word handles GET /api/v1/dictionary/{word}
func (h *MetaHandler) Word(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(mux.Vars(r)["word"])
	if word == "" {
		WriteError(w, NewInvalidRequestError("word is required"))
		return
	}

	resp := response.WordResponse{
		Word:      word,
		Valid:     h.words.IsValidWord(word),
		InLexicon: h.words.Contains(word),
	}
	if meaning, ok := h.words.Meaning(word); ok {
		resp.Meaning = meaning
	}
	response.JSON(w, http.StatusOK, resp)
}

package response

import (
	"time"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/auth"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/evaluator"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		Username:    p.Username,
		DisplayName: p.Name(),
		IsGuest:     p.IsGuest,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from an auth session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Placement is one letter on one cell
type Placement struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Points int    `json:"points"`
}

// PlacementsFromModel converts scored placements
func PlacementsFromModel(ps []model.ScoredPlacement) []Placement {
	out := make([]Placement, len(ps))
	for i, p := range ps {
		out[i] = Placement{Letter: string(p.Letter), Row: p.Row, Col: p.Col, Points: p.Points}
	}
	return out
}

// Session represents a session's shared state. The bag is reported by size only.
type Session struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CurrentPlayerID  string     `json:"current_player_id,omitempty"`
	Board            []string   `json:"board"`
	BagCount         int        `json:"bag_count"`
	Version          int64      `json:"version"`
	ConsecutiveSkips int        `json:"consecutive_skips"`
	EndReason        string     `json:"end_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// SessionFromModel converts model.Session
func SessionFromModel(s *model.Session) Session {
	cells := make([]string, len(s.Board))
	for i, l := range s.Board {
		cells[i] = string(l)
	}
	return Session{
		ID:               string(s.ID),
		Status:           string(s.Status),
		CurrentPlayerID:  string(s.CurrentPlayerID),
		Board:            cells,
		BagCount:         len(s.Bag),
		Version:          s.Version,
		ConsecutiveSkips: s.ConsecutiveSkips,
		EndReason:        string(s.EndReason),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		FinishedAt:       s.FinishedAt,
	}
}

// SessionSummary is a session in list responses
type SessionSummary struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	CurrentPlayerID string    `json:"current_player_id,omitempty"`
	BagCount        int       `json:"bag_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionSummariesFromModel converts a session list
func SessionSummariesFromModel(sessions []*model.Session) []SessionSummary {
	out := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		out[i] = SessionSummary{
			ID:              string(s.ID),
			Status:          string(s.Status),
			CurrentPlayerID: string(s.CurrentPlayerID),
			BagCount:        len(s.Bag),
			CreatedAt:       s.CreatedAt,
		}
	}
	return out
}

// Member is a seated player with their score and rack
type Member struct {
	Player Player   `json:"player"`
	Score  int      `json:"score"`
	Rack   []string `json:"rack"`
}

// Move is one accepted move in history order
type Move struct {
	ID         string      `json:"id"`
	PlayerID   string      `json:"player_id"`
	Seq        int         `json:"seq"`
	Word       string      `json:"word"`
	Placements []Placement `json:"placements"`
	Score      int         `json:"score"`
	CreatedAt  time.Time   `json:"created_at"`
}

// MoveFromModel converts model.Move
func MoveFromModel(m *model.Move) Move {
	return Move{
		ID:         string(m.ID),
		PlayerID:   string(m.PlayerID),
		Seq:        m.Seq,
		Word:       m.Word,
		Placements: PlacementsFromModel(m.Placements),
		Score:      m.Score,
		CreatedAt:  m.CreatedAt,
	}
}

// Snapshot is the full visible state of a session
type Snapshot struct {
	Session       Session  `json:"session"`
	Members       []Member `json:"members"`
	CurrentPlayer *Player  `json:"current_player"`
	Moves         []Move   `json:"moves"`
}

// SnapshotFromModel converts model.Snapshot
func SnapshotFromModel(s *model.Snapshot) Snapshot {
	members := make([]Member, len(s.Members))
	for i, m := range s.Members {
		members[i] = Member{
			Player: PlayerFromModel(&m.Player),
			Score:  m.Score,
			Rack:   lettersToStrings(m.Rack),
		}
	}

	moves := make([]Move, len(s.Moves))
	for i, m := range s.Moves {
		moves[i] = MoveFromModel(m)
	}

	var current *Player
	if s.CurrentPlayer != nil {
		p := PlayerFromModel(s.CurrentPlayer)
		current = &p
	}

	return Snapshot{
		Session:       SessionFromModel(s.Session),
		Members:       members,
		CurrentPlayer: current,
		Moves:         moves,
	}
}

// MoveResponse is the response after a move is accepted
type MoveResponse struct {
	Move  Move     `json:"move"`
	State Snapshot `json:"state"`
}

// Evaluation is the response for a move preview
type Evaluation struct {
	Word        string      `json:"word"`
	Score       int         `json:"score"`
	Placements  []Placement `json:"placements"`
	UsedLetters []string    `json:"used_letters"`
}

// EvaluationFromModel converts evaluator.Evaluation
func EvaluationFromModel(e *evaluator.Evaluation) Evaluation {
	return Evaluation{
		Word:        e.Word,
		Score:       e.Score,
		Placements:  PlacementsFromModel(e.Placements),
		UsedLetters: lettersToStrings(e.UsedLetters),
	}
}

// Tile is one entry of the letter table
type Tile struct {
	Letter string `json:"letter"`
	Points int    `json:"points"`
	Count  int    `json:"count"`
}

// TilesResponse is the full letter table
type TilesResponse struct {
	Tiles []Tile `json:"tiles"`
	Total int    `json:"total"`
}

// TilesFromModel converts the letter table
func TilesFromModel(entries []tiles.LetterEntry) TilesResponse {
	out := TilesResponse{Tiles: make([]Tile, len(entries))}
	for i, e := range entries {
		out.Tiles[i] = Tile{Letter: string(e.Letter), Points: e.Points, Count: e.Count}
		out.Total += e.Count
	}
	return out
}

// PremiumCell is a board cell carrying a bonus
type PremiumCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
}

// LayoutResponse is the static premium layout
type LayoutResponse struct {
	Size     int           `json:"size"`
	Center   PremiumCell   `json:"center"`
	Premiums []PremiumCell `json:"premiums"`
}

// LayoutFromModel converts a row-major premium layout, skipping plain cells
func LayoutFromModel(layout []model.PremiumKind) LayoutResponse {
	out := LayoutResponse{Size: model.BoardSize}
	for i, kind := range layout {
		if kind == model.PremiumNone {
			continue
		}
		row, col := board.CellToCoord(i)
		cell := PremiumCell{Row: row, Col: col, Kind: string(kind)}
		if kind == model.PremiumCenter {
			out.Center = cell
		}
		out.Premiums = append(out.Premiums, cell)
	}
	return out
}

// WordResponse is the dictionary lookup result for one word
type WordResponse struct {
	Word      string `json:"word"`
	Valid     bool   `json:"valid"`
	InLexicon bool   `json:"in_lexicon"`
	Meaning   string `json:"meaning,omitempty"`
}

// Suggestion is a lexicon word formable from a rack
type Suggestion struct {
	Word    string   `json:"word"`
	Letters []string `json:"letters"`
}

// HintsResponse lists suggestions for the caller's rack
type HintsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// HintsFromModel converts dictionary suggestions
func HintsFromModel(suggestions []dictionary.Suggestion) HintsResponse {
	out := HintsResponse{Suggestions: make([]Suggestion, len(suggestions))}
	for i, s := range suggestions {
		out.Suggestions[i] = Suggestion{Word: s.Word, Letters: lettersToStrings(s.Letters)}
	}
	return out
}

func lettersToStrings(letters []model.Letter) []string {
	out := make([]string, len(letters))
	for i, l := range letters {
		out[i] = string(l)
	}
	return out
}

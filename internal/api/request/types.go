package request

import (
	"errors"
	"fmt"

	"github.com/mcoot/banglascrabble/internal/model"
)

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Placement is one letter placed on the board
type Placement struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// ErrNoPlacements rejects a move request without placements
var ErrNoPlacements = errors.New("placements are required")

// MoveRequest is the request body for submitting or previewing a move
type MoveRequest struct {
	Placements []Placement `json:"placements"`
}

// Validate checks the request shape. Board rules are left to the evaluator.
func (r MoveRequest) Validate() error {
	if len(r.Placements) == 0 {
		return ErrNoPlacements
	}
	for i, p := range r.Placements {
		if p.Letter == "" {
			return fmt.Errorf("placements[%d].letter is required", i)
		}
	}
	return nil
}

// ToModel converts the request placements
func (r MoveRequest) ToModel() []model.Placement {
	out := make([]model.Placement, len(r.Placements))
	for i, p := range r.Placements {
		out[i] = model.Placement{Letter: model.Letter(p.Letter), Row: p.Row, Col: p.Col}
	}
	return out
}

// AddBotRequest is the request body for adding a bot to a session
type AddBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

// WSMessage is a client frame on the WebSocket transport
type WSMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// WebSocket client message types
const (
	WSJoinGame  = "joinGame"
	WSLeaveGame = "leaveGame"
)

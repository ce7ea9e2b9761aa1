package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// boardSize is the width and height of the shared board
const boardSize = 15

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Snapshot:
		o.printSnapshot(v)
	case []SessionSummary:
		o.printSessionList(v)
	case MoveResult:
		o.printMoveResult(v)
	case Evaluation:
		o.printEvaluation(v)
	case Hints:
		o.printHints(v)
	case Tiles:
		o.printTiles(v)
	case Layout:
		o.printLayout(v)
	case WordResult:
		o.printWord(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Placement response type
type Placement struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Points int    `json:"points,omitempty"`
}

// SessionState is the shared part of a session
type SessionState struct {
	ID               string   `json:"id"`
	Status           string   `json:"status"`
	CurrentPlayerID  string   `json:"current_player_id,omitempty"`
	Board            []string `json:"board"`
	BagCount         int      `json:"bag_count"`
	Version          int64    `json:"version"`
	ConsecutiveSkips int      `json:"consecutive_skips"`
	EndReason        string   `json:"end_reason,omitempty"`
}

// Member response type
type Member struct {
	Player Player   `json:"player"`
	Score  int      `json:"score"`
	Rack   []string `json:"rack"`
}

// Move response type
type Move struct {
	ID         string      `json:"id"`
	PlayerID   string      `json:"player_id"`
	Seq        int         `json:"seq"`
	Word       string      `json:"word"`
	Placements []Placement `json:"placements"`
	Score      int         `json:"score"`
}

// Snapshot response type
type Snapshot struct {
	Session       SessionState `json:"session"`
	Members       []Member     `json:"members"`
	CurrentPlayer *Player      `json:"current_player"`
	Moves         []Move       `json:"moves"`
}

// SessionSummary response type
type SessionSummary struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	CurrentPlayerID string `json:"current_player_id,omitempty"`
	BagCount        int    `json:"bag_count"`
}

// MoveResult response type
type MoveResult struct {
	Move  Move     `json:"move"`
	State Snapshot `json:"state"`
}

// Evaluation response type
type Evaluation struct {
	Word        string      `json:"word"`
	Score       int         `json:"score"`
	Placements  []Placement `json:"placements"`
	UsedLetters []string    `json:"used_letters"`
}

// Hints response type
type Hints struct {
	Suggestions []struct {
		Word    string   `json:"word"`
		Letters []string `json:"letters"`
	} `json:"suggestions"`
}

// Tiles response type
type Tiles struct {
	Tiles []struct {
		Letter string `json:"letter"`
		Points int    `json:"points"`
		Count  int    `json:"count"`
	} `json:"tiles"`
	Total int `json:"total"`
}

// PremiumCell response type
type PremiumCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
}

// Layout response type
type Layout struct {
	Size     int           `json:"size"`
	Center   PremiumCell   `json:"center"`
	Premiums []PremiumCell `json:"premiums"`
}

// WordResult response type
type WordResult struct {
	Word      string `json:"word"`
	Valid     bool   `json:"valid"`
	InLexicon bool   `json:"in_lexicon"`
	Meaning   string `json:"meaning,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.Username != "" {
		fmt.Printf("Username: %s\n", p.Username)
	}
	fmt.Printf("Guest: %s\n", yesNo(p.IsGuest))
	if p.IsBot {
		fmt.Println("Bot: yes")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printSnapshot(s Snapshot) {
	fmt.Printf("Session: %s\n", s.Session.ID)
	fmt.Printf("Status: %s\n", s.Session.Status)
	if s.Session.EndReason != "" {
		fmt.Printf("Ended: %s\n", s.Session.EndReason)
	}
	if s.CurrentPlayer != nil {
		fmt.Printf("Turn: %s\n", s.CurrentPlayer.DisplayName)
	}
	fmt.Printf("Bag: %d tiles\n", s.Session.BagCount)

	fmt.Printf("Members (%d):\n", len(s.Members))
	for _, m := range s.Members {
		marker := ""
		if s.CurrentPlayer != nil && m.Player.ID == s.CurrentPlayer.ID {
			marker = " *"
		}
		fmt.Printf("  - %s: %d points [%s]%s\n", m.Player.DisplayName, m.Score, strings.Join(m.Rack, " "), marker)
	}

	if len(s.Moves) > 0 {
		fmt.Println("Moves:")
		for _, mv := range s.Moves {
			fmt.Printf("  %d. %s played %s for %d\n", mv.Seq+1, mv.PlayerID, mv.Word, mv.Score)
		}
	}

	fmt.Println()
	o.printBoard(s.Session.Board)
}

func (o *Output) printSessionList(list []SessionSummary) {
	if len(list) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range list {
		fmt.Printf("%s  %-8s  bag %3d  turn %s\n", s.ID, s.Status, s.BagCount, s.CurrentPlayerID)
	}
}

func (o *Output) printBoard(cells []string) {
	if len(cells) != boardSize*boardSize {
		return
	}

	// Print column headers
	fmt.Print("    ")
	for col := range boardSize {
		fmt.Printf("%3d", col)
	}
	fmt.Println()

	for row := range boardSize {
		fmt.Printf("%3d |", row)
		for col := range boardSize {
			cell := cells[row*boardSize+col]
			if cell == "" {
				cell = "."
			}
			fmt.Printf(" %s ", cell)
		}
		fmt.Println("|")
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Printf("Played %s for %d points\n", m.Move.Word, m.Move.Score)
	if m.State.CurrentPlayer != nil {
		fmt.Printf("Next turn: %s\n", m.State.CurrentPlayer.DisplayName)
	}
	if m.State.Session.Status == "finished" {
		fmt.Printf("Session finished (%s)\n", m.State.Session.EndReason)
	}
}

func (o *Output) printEvaluation(e Evaluation) {
	fmt.Printf("Word: %s\n", e.Word)
	fmt.Printf("Score: %d\n", e.Score)
	for _, p := range e.Placements {
		fmt.Printf("  %s at (%d,%d): %d\n", p.Letter, p.Row, p.Col, p.Points)
	}
}

func (o *Output) printHints(h Hints) {
	if len(h.Suggestions) == 0 {
		fmt.Println("No words can be formed from this rack")
		return
	}
	for _, s := range h.Suggestions {
		fmt.Printf("%s  (%s)\n", s.Word, strings.Join(s.Letters, " "))
	}
}

func (o *Output) printTiles(t Tiles) {
	for _, tile := range t.Tiles {
		fmt.Printf("%s  %2d pts  x%d\n", tile.Letter, tile.Points, tile.Count)
	}
	fmt.Printf("Total: %d tiles\n", t.Total)
}

func (o *Output) printLayout(l Layout) {
	fmt.Printf("Board: %dx%d, centre (%d,%d)\n", l.Size, l.Size, l.Center.Row, l.Center.Col)
	counts := map[string]int{}
	for _, p := range l.Premiums {
		counts[p.Kind]++
	}
	for _, kind := range []string{"tripleWord", "doubleWord", "tripleLetter", "doubleLetter"} {
		fmt.Printf("  %-12s %d cells\n", kind, counts[kind])
	}
}

func (o *Output) printWord(w WordResult) {
	fmt.Printf("Word: %s\n", w.Word)
	fmt.Printf("Valid: %s\n", yesNo(w.Valid))
	fmt.Printf("In lexicon: %s\n", yesNo(w.InLexicon))
	if w.Meaning != "" {
		fmt.Printf("Meaning: %s\n", w.Meaning)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
}

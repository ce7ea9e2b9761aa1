package model

import (
	"slices"
	"time"
)

// SessionID uniquely identifies a game session
type SessionID string

// SessionStatus is the lifecycle phase of a session
type SessionStatus string

const (
	SessionWaiting  SessionStatus = "waiting"  // Fewer than two members
	SessionActive   SessionStatus = "active"   // Turns in progress
	SessionFinished SessionStatus = "finished" // Terminal
)

// MaxMembers is the membership capacity of a session
const MaxMembers = 4

// RackSize is the number of tiles a player holds between moves
const RackSize = 7

// EndReason records why a session finished
type EndReason string

const (
	EndReasonNone       EndReason = ""
	EndReasonTilesOut   EndReason = "tiles_out"   // Bag empty and a player emptied their rack
	EndReasonAllSkipped EndReason = "all_skipped" // Every member skipped twice in a row
)

// Session is the authoritative state of one game
type Session struct {
	ID              SessionID
	Status          SessionStatus
	CurrentPlayerID PlayerID // Empty while nobody holds the turn
	Board           Board
	Bag             []Letter // Front is the next draw

	// Version increases by one on every committed mutation
	Version          int64
	ConsecutiveSkips int
	EndReason        EndReason

	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.Bag = slices.Clone(s.Bag)
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Member is a player's seat in a session
type Member struct {
	SessionID SessionID
	PlayerID  PlayerID
	Seq       int // Join order, starting at 0
	Score     int
	Rack      []Letter
	JoinedAt  time.Time
}

// Clone returns a deep copy of the member
func (m *Member) Clone() *Member {
	c := *m
	c.Rack = slices.Clone(m.Rack)
	return &c
}

// MoveID uniquely identifies a move
type MoveID string

// Move is an immutable record of an accepted placement
type Move struct {
	ID         MoveID
	SessionID  SessionID
	PlayerID   PlayerID
	Seq        int // Position in the session's history, starting at 0
	Word       string
	Placements []ScoredPlacement
	Score      int
	CreatedAt  time.Time
}

// Clone returns a deep copy of the move
func (m *Move) Clone() *Move {
	c := *m
	c.Placements = slices.Clone(m.Placements)
	return &c
}

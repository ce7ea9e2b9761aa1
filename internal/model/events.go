package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventStateUpdate   EventType = "stateUpdate"
	EventMoveSubmitted EventType = "moveSubmitted"
	EventTurnSkipped   EventType = "turnSkipped"
)

// Event is a committed state change of one session
type Event struct {
	Type      EventType
	SessionID SessionID
	Timestamp time.Time
	Snapshot  *Snapshot
	Move      *Move // Only set for EventMoveSubmitted
}

// MemberView is a member joined with its player record
type MemberView struct {
	Player Player
	Score  int
	Rack   []Letter
}

// Snapshot is a consistent read of a session and everything it owns
type Snapshot struct {
	Session       *Session
	Members       []MemberView // Join order
	CurrentPlayer *Player
	Moves         []*Move // History order
}

// Member returns the view for playerID, or nil if not a member
func (s *Snapshot) Member(playerID PlayerID) *MemberView {
	for i := range s.Members {
		if s.Members[i].Player.ID == playerID {
			return &s.Members[i]
		}
	}
	return nil
}

// Leaders returns the ids of the members with the highest score
func (s *Snapshot) Leaders() []PlayerID {
	best := -1
	var leaders []PlayerID
	for _, m := range s.Members {
		switch {
		case m.Score > best:
			best = m.Score
			leaders = []PlayerID{m.Player.ID}
		case m.Score == best:
			leaders = append(leaders, m.Player.ID)
		}
	}
	return leaders
}

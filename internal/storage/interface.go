package storage

import (
	"context"

	"github.com/mcoot/banglascrabble/internal/model"
)

// Changeset is everything one session mutation writes. Apply commits it
// atomically: either all of it is visible afterwards or none of it is.
type Changeset struct {
	// Session replaces the stored session. Its Version must be exactly one
	// more than the stored version, otherwise Apply fails with
	// model.ErrVersionConflict.
	Session *model.Session

	// Members are inserted or replaced, keyed by (SessionID, PlayerID)
	Members []*model.Member

	// Move is appended to the session's history when set
	Move *model.Move
}

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)

	// Session operations
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// ListSessions returns every session, newest first
	ListSessions(ctx context.Context) ([]*model.Session, error)
	// ListMembers returns a session's members in join order
	ListMembers(ctx context.Context, id model.SessionID) ([]*model.Member, error)
	// ListMoves returns a session's moves in history order
	ListMoves(ctx context.Context, id model.SessionID) ([]*model.Move, error)
	Apply(ctx context.Context, cs *Changeset) error

	Close() error
}

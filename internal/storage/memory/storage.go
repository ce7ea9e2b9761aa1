package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	sessions          map[model.SessionID]*model.Session
	members           map[model.SessionID]map[model.PlayerID]*model.Member
	moves             map[model.SessionID][]*model.Move
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		sessions:          make(map[model.SessionID]*model.Session),
		members:           make(map[model.SessionID]map[model.PlayerID]*model.Member),
		moves:             make(map[model.SessionID][]*model.Move),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.usernameIndex[player.Username]; ok && owner != player.ID {
		return model.ErrUsernameTaken
	}
	if prev, ok := s.players[player.ID]; ok && prev.Username != player.Username {
		delete(s.usernameIndex, prev.Username)
	}
	p := *player
	s.players[player.ID] = &p
	if player.Username != "" {
		s.usernameIndex[player.Username] = player.ID
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetPlayer(ctx, id)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player, ok := s.players[id]; ok {
		delete(s.usernameIndex, player.Username)
	}
	delete(s.players, id)
	delete(s.registeredPlayers, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return model.ErrSessionExists
	}
	s.sessions[session.ID] = session.Clone()
	s.members[session.ID] = make(map[model.PlayerID]*model.Member)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	slices.SortFunc(out, func(a, b *model.Session) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Storage) ListMembers(ctx context.Context, id model.SessionID) ([]*model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, model.ErrSessionNotFound
	}
	out := make([]*model.Member, 0, len(s.members[id]))
	for _, m := range s.members[id] {
		out = append(out, m.Clone())
	}
	slices.SortFunc(out, func(a, b *model.Member) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out, nil
}

func (s *Storage) ListMoves(ctx context.Context, id model.SessionID) ([]*model.Move, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, model.ErrSessionNotFound
	}
	out := make([]*model.Move, 0, len(s.moves[id]))
	for _, m := range s.moves[id] {
		out = append(out, m.Clone())
	}
	return out, nil
}

// Apply commits a changeset under the store's single write lock
func (s *Storage) Apply(ctx context.Context, cs *storage.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := cs.Session.ID
	current, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if cs.Session.Version != current.Version+1 {
		return model.ErrVersionConflict
	}

	s.sessions[id] = cs.Session.Clone()
	for _, m := range cs.Members {
		s.members[id][m.PlayerID] = m.Clone()
	}
	if cs.Move != nil {
		s.moves[id] = append(s.moves[id], cs.Move.Clone())
	}
	return nil
}

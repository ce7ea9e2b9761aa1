// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
)

// Suite runs the storage contract against a backend. Backends embed it and
// set NewStorage in their own SetupTest before calling Suite.SetupTest.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	now     time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) newSession(id model.SessionID, createdAt time.Time) *model.Session {
	session := &model.Session{
		ID:        id,
		Status:    model.SessionWaiting,
		Bag:       []model.Letter{"ক", "খ", "গ"},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	s.Require().NoError(s.Storage.CreateSession(s.Ctx, session))
	return session
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		Username:    "alice",
		DisplayName: "Alice",
		IsGuest:     true,
		CreatedAt:   s.now,
	}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.Username, got.Username)
	s.Equal(player.DisplayName, got.DisplayName)
	s.True(got.IsGuest)
	s.True(player.CreatedAt.Equal(got.CreatedAt))

	byName, err := s.Storage.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.ID)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Storage.GetPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestUsernameIsUnique() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p1", Username: "alice"}))

	err := s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p2", Username: "alice"})
	s.ErrorIs(err, model.ErrUsernameTaken)

	// Re-saving the owner is fine
	s.NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p1", Username: "alice", DisplayName: "Al"}))
}

func (s *Suite) TestDeletePlayerFreesUsername() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p1", Username: "alice"}))
	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "p1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p2", Username: "alice"}))
}

func (s *Suite) TestRegisteredPlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p1", Username: "alice"}))
	rp := &model.RegisteredPlayer{
		PlayerID:     "p1",
		Username:     "alice",
		PasswordHash: "hash",
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	got, err := s.Storage.GetRegisteredPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)
	s.Equal("alice", got.Username)

	_, err = s.Storage.GetRegisteredPlayer(s.Ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Session tests

func (s *Suite) TestCreateAndGetSession() {
	created := s.newSession("s1", s.now)

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(created.Status, got.Status)
	s.Equal(created.Bag, got.Bag)
	s.Equal(model.Board{}, got.Board)
	s.Equal(int64(0), got.Version)
	s.Nil(got.FinishedAt)
}

func (s *Suite) TestCreateSessionTwiceFails() {
	s.newSession("s1", s.now)
	err := s.Storage.CreateSession(s.Ctx, &model.Session{ID: "s1", CreatedAt: s.now})
	s.ErrorIs(err, model.ErrSessionExists)
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.Storage.ListMembers(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.Storage.ListMoves(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListSessionsNewestFirst() {
	s.newSession("old", s.now)
	s.newSession("new", s.now.Add(time.Minute))
	s.newSession("mid", s.now.Add(30*time.Second))

	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 3)
	s.Equal(model.SessionID("new"), sessions[0].ID)
	s.Equal(model.SessionID("mid"), sessions[1].ID)
	s.Equal(model.SessionID("old"), sessions[2].ID)
}

func (s *Suite) TestApplyCommitsEverything() {
	session := s.newSession("s1", s.now)

	session.Version = 1
	session.Status = model.SessionActive
	session.CurrentPlayerID = "p2"
	session.Board[112] = "ক"
	session.Bag = []model.Letter{"গ"}
	finished := s.now.Add(time.Hour)
	session.FinishedAt = &finished

	move := &model.Move{
		ID:        "m1",
		SessionID: "s1",
		PlayerID:  "p1",
		Word:      "ক",
		Placements: []model.ScoredPlacement{
			{Letter: "ক", Row: 7, Col: 7, Points: 2},
		},
		Score:     2,
		CreatedAt: s.now,
	}
	err := s.Storage.Apply(s.Ctx, &storage.Changeset{
		Session: session,
		Members: []*model.Member{
			{SessionID: "s1", PlayerID: "p2", Seq: 1, Rack: []model.Letter{"খ"}, JoinedAt: s.now},
			{SessionID: "s1", PlayerID: "p1", Seq: 0, Score: 2, Rack: []model.Letter{"অ", "আ"}, JoinedAt: s.now},
		},
		Move: move,
	})
	s.Require().NoError(err)

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(int64(1), got.Version)
	s.Equal(model.SessionActive, got.Status)
	s.Equal(model.PlayerID("p2"), got.CurrentPlayerID)
	s.Equal(model.Letter("ক"), got.Board[112])
	s.Equal([]model.Letter{"গ"}, got.Bag)
	s.Require().NotNil(got.FinishedAt)
	s.True(finished.Equal(*got.FinishedAt))

	members, err := s.Storage.ListMembers(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(members, 2)
	s.Equal(model.PlayerID("p1"), members[0].PlayerID)
	s.Equal(2, members[0].Score)
	s.Equal([]model.Letter{"অ", "আ"}, members[0].Rack)
	s.Equal(model.PlayerID("p2"), members[1].PlayerID)

	moves, err := s.Storage.ListMoves(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(moves, 1)
	s.Equal(move.Placements, moves[0].Placements)
	s.Equal(2, moves[0].Score)
}

func (s *Suite) TestApplyReplacesMembers() {
	session := s.newSession("s1", s.now)
	member := &model.Member{SessionID: "s1", PlayerID: "p1", Rack: []model.Letter{"ক"}, JoinedAt: s.now}

	session.Version = 1
	s.Require().NoError(s.Storage.Apply(s.Ctx, &storage.Changeset{Session: session, Members: []*model.Member{member}}))

	member.Score = 5
	member.Rack = nil
	session.Version = 2
	s.Require().NoError(s.Storage.Apply(s.Ctx, &storage.Changeset{Session: session, Members: []*model.Member{member}}))

	members, err := s.Storage.ListMembers(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(5, members[0].Score)
	s.Empty(members[0].Rack)
}

func (s *Suite) TestMovesKeepHistoryOrder() {
	session := s.newSession("s1", s.now)
	for i := range 3 {
		session.Version = int64(i + 1)
		err := s.Storage.Apply(s.Ctx, &storage.Changeset{
			Session: session,
			Move: &model.Move{
				ID:        model.MoveID(string(rune('a' + i))),
				SessionID: "s1",
				PlayerID:  "p1",
				Seq:       i,
				CreatedAt: s.now.Add(time.Duration(i) * time.Second),
			},
		})
		s.Require().NoError(err)
	}

	moves, err := s.Storage.ListMoves(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(moves, 3)
	for i, m := range moves {
		s.Equal(i, m.Seq)
	}
}

func (s *Suite) TestApplyRejectsStaleVersion() {
	session := s.newSession("s1", s.now)

	session.Version = 2
	err := s.Storage.Apply(s.Ctx, &storage.Changeset{Session: session})
	s.ErrorIs(err, model.ErrVersionConflict)

	session.Version = 0
	err = s.Storage.Apply(s.Ctx, &storage.Changeset{Session: session})
	s.ErrorIs(err, model.ErrVersionConflict)

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(int64(0), got.Version)
}

func (s *Suite) TestApplyUnknownSession() {
	err := s.Storage.Apply(s.Ctx, &storage.Changeset{Session: &model.Session{ID: "missing", Version: 1}})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestConcurrentApplyAdmitsOneWriterPerVersion() {
	session := s.newSession("s1", s.now)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := session.Clone()
			next.Version = 1
			results <- s.Storage.Apply(s.Ctx, &storage.Changeset{Session: next})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrVersionConflict)
	}
	s.Equal(1, succeeded)
}

func (s *Suite) TestReturnedValuesAreCopies() {
	s.newSession("s1", s.now)

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	got.Bag[0] = "x"
	got.Board[0] = "x"

	again, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(model.Letter("ক"), again.Bag[0])
	s.Equal(model.Letter(""), again.Board[0])
}

// Package session owns the session state machine. It is the only code that
// mutates a session, and every mutation runs under that session's write lock.
package session

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/banglascrabble/internal/dependencies/clock"
	"github.com/mcoot/banglascrabble/internal/locks"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/evaluator"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
	"github.com/mcoot/banglascrabble/internal/storage"
)

// Publisher receives committed events. Publish must not block.
type Publisher interface {
	Publish(event *model.Event)
}

// MoveResult is the outcome of an accepted move
type MoveResult struct {
	Move     *model.Move
	Snapshot *model.Snapshot
}

// Controller manages the session lifecycle and turn flow
type Controller struct {
	storage   storage.Storage
	locks     *locks.Registry[model.SessionID]
	tiles     tiles.ServiceInterface
	evaluator evaluator.ServiceInterface
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewController creates a new session Controller. publisher may be nil.
func NewController(
	storage storage.Storage,
	lockRegistry *locks.Registry[model.SessionID],
	tilesService tiles.ServiceInterface,
	evaluatorService evaluator.ServiceInterface,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		locks:     lockRegistry,
		tiles:     tilesService,
		evaluator: evaluatorService,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// CreateSession creates an empty waiting session with a freshly shuffled bag
func (c *Controller) CreateSession(ctx context.Context) (*model.Session, error) {
	ctx = context.WithoutCancel(ctx)
	now := c.clock.Now()

	session := &model.Session{
		ID:        model.SessionID(uuid.NewString()),
		Status:    model.SessionWaiting,
		Bag:       c.tiles.BuildBag(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.CreateSession(ctx, session); err != nil {
		c.logger.Error("failed to create session", slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.Int("bag_size", len(session.Bag)))
	return session, nil
}

// ListSessions returns every session, newest first
func (c *Controller) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return c.storage.ListSessions(ctx)
}

// Join seats a player in a session and deals their rack. The second member
// to join activates the session and hands the first turn to the first member.
func (c *Controller) Join(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Snapshot, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if session.Status == model.SessionFinished {
		return nil, model.ErrSessionFinished
	}

	members, err := c.storage.ListMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(members) >= model.MaxMembers {
		return nil, model.ErrSessionFull
	}
	if findMember(members, playerID) != nil {
		return nil, model.ErrAlreadyMember
	}

	now := c.clock.Now()
	rack, bag, err := c.tiles.Draw(session.Bag, min(model.RackSize, len(session.Bag)))
	if err != nil {
		return nil, err
	}
	member := &model.Member{
		SessionID: sessionID,
		PlayerID:  playerID,
		Seq:       len(members),
		Rack:      rack,
		JoinedAt:  now,
	}
	members = append(members, member)

	session.Bag = bag
	if len(members) == 2 && session.Status == model.SessionWaiting {
		session.Status = model.SessionActive
		session.CurrentPlayerID = members[0].PlayerID
	}
	session.Version++
	session.UpdatedAt = now

	if err := c.storage.Apply(ctx, &storage.Changeset{
		Session: session,
		Members: []*model.Member{member},
	}); err != nil {
		c.logFailure("join", sessionID, playerID, err)
		return nil, err
	}

	snapshot, err := c.loadSnapshot(ctx, session, members)
	if err != nil {
		return nil, err
	}

	c.logger.Info("player joined session",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.Int("member_count", len(members)),
		slog.String("status", string(session.Status)))

	c.publish(&model.Event{Type: model.EventStateUpdate, SessionID: sessionID, Timestamp: now, Snapshot: snapshot})
	return snapshot, nil
}

// SubmitMove validates and commits a move by the player holding the turn
func (c *Controller) SubmitMove(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, placements []model.Placement) (*MoveResult, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, model.ErrNotActive
	}
	if session.CurrentPlayerID != playerID {
		return nil, model.ErrWrongTurn
	}

	members, err := c.storage.ListMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mover := findMember(members, playerID)
	if mover == nil {
		return nil, model.ErrWrongTurn
	}

	evaluation, err := c.evaluator.Evaluate(&session.Board, mover.Rack, placements)
	if err != nil {
		c.logger.Debug("move rejected",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID)),
			slog.String("code", model.RuleCode(err)))
		return nil, err
	}

	history, err := c.storage.ListMoves(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for _, p := range evaluation.Placements {
		session.Board[board.CoordToCell(p.Row, p.Col)] = p.Letter
	}

	drawn, bag, err := c.tiles.Draw(session.Bag, min(len(evaluation.UsedLetters), len(session.Bag)))
	if err != nil {
		return nil, err
	}
	mover.Rack = append(evaluator.RemoveLetters(mover.Rack, evaluation.UsedLetters), drawn...)
	mover.Score += evaluation.Score
	session.Bag = bag

	move := &model.Move{
		ID:         model.MoveID(uuid.NewString()),
		SessionID:  sessionID,
		PlayerID:   playerID,
		Seq:        len(history),
		Word:       evaluation.Word,
		Placements: evaluation.Placements,
		Score:      evaluation.Score,
		CreatedAt:  now,
	}

	session.ConsecutiveSkips = 0
	session.CurrentPlayerID = nextPlayer(members, playerID)
	if len(session.Bag) == 0 && len(mover.Rack) == 0 {
		c.finish(session, model.EndReasonTilesOut, now)
	}
	session.Version++
	session.UpdatedAt = now

	if err := c.storage.Apply(ctx, &storage.Changeset{
		Session: session,
		Members: []*model.Member{mover},
		Move:    move,
	}); err != nil {
		c.logFailure("submit move", sessionID, playerID, err)
		return nil, err
	}

	snapshot, err := c.loadSnapshot(ctx, session, members)
	if err != nil {
		return nil, err
	}

	c.logger.Info("move submitted",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.String("word", move.Word),
		slog.Int("score", move.Score),
		slog.Int("bag_remaining", len(session.Bag)))

	c.publish(&model.Event{Type: model.EventMoveSubmitted, SessionID: sessionID, Timestamp: now, Snapshot: snapshot, Move: move})
	return &MoveResult{Move: move, Snapshot: snapshot}, nil
}

// SkipTurn passes the turn to the next member
func (c *Controller) SkipTurn(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Snapshot, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// Waiting and finished sessions have no current player
	if session.CurrentPlayerID == "" || session.CurrentPlayerID != playerID {
		return nil, model.ErrWrongTurn
	}

	members, err := c.storage.ListMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session.ConsecutiveSkips++
	session.CurrentPlayerID = nextPlayer(members, playerID)
	if session.ConsecutiveSkips >= 2*len(members) {
		c.finish(session, model.EndReasonAllSkipped, now)
	}
	session.Version++
	session.UpdatedAt = now

	if err := c.storage.Apply(ctx, &storage.Changeset{Session: session}); err != nil {
		c.logFailure("skip turn", sessionID, playerID, err)
		return nil, err
	}

	snapshot, err := c.loadSnapshot(ctx, session, members)
	if err != nil {
		return nil, err
	}

	c.logger.Info("turn skipped",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.Int("consecutive_skips", session.ConsecutiveSkips))

	c.publish(&model.Event{Type: model.EventTurnSkipped, SessionID: sessionID, Timestamp: now, Snapshot: snapshot})
	return snapshot, nil
}

// Snapshot returns a consistent copy of a session and everything it owns
func (c *Controller) Snapshot(ctx context.Context, sessionID model.SessionID) (*model.Snapshot, error) {
	unlock := c.locks.RLock(sessionID)
	defer unlock()
	return c.snapshotLocked(ctx, sessionID)
}

// WithSnapshot calls fn with a snapshot while still holding the session's
// read lock, so no mutation can commit between the read and fn returning.
// fn must not block.
func (c *Controller) WithSnapshot(ctx context.Context, sessionID model.SessionID, fn func(*model.Snapshot)) error {
	unlock := c.locks.RLock(sessionID)
	defer unlock()

	snapshot, err := c.snapshotLocked(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(snapshot)
	return nil
}

// Preview evaluates placements against a member's current rack without committing
func (c *Controller) Preview(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, placements []model.Placement) (*evaluator.Evaluation, error) {
	snapshot, err := c.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	member := snapshot.Member(playerID)
	if member == nil {
		return nil, model.ErrPlayerNotFound
	}
	return c.evaluator.Evaluate(&snapshot.Session.Board, member.Rack, placements)
}

func (c *Controller) snapshotLocked(ctx context.Context, sessionID model.SessionID) (*model.Snapshot, error) {
	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	members, err := c.storage.ListMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.loadSnapshot(ctx, session, members)
}

// loadSnapshot joins members with their player records and loads the move history
func (c *Controller) loadSnapshot(ctx context.Context, session *model.Session, members []*model.Member) (*model.Snapshot, error) {
	moves, err := c.storage.ListMoves(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		Session: session.Clone(),
		Members: make([]model.MemberView, 0, len(members)),
		Moves:   moves,
	}
	for _, m := range members {
		player, err := c.storage.GetPlayer(ctx, m.PlayerID)
		if err != nil {
			// Guest records can expire before the sessions they played in
			c.logger.Warn("member player record missing",
				slog.String("session_id", string(session.ID)),
				slog.String("player_id", string(m.PlayerID)),
				slog.String("error", err.Error()))
			player = &model.Player{ID: m.PlayerID}
		}
		snapshot.Members = append(snapshot.Members, model.MemberView{
			Player: *player,
			Score:  m.Score,
			Rack:   slices.Clone(m.Rack),
		})
	}
	if view := snapshot.Member(session.CurrentPlayerID); view != nil {
		p := view.Player
		snapshot.CurrentPlayer = &p
	}
	return snapshot, nil
}

func (c *Controller) finish(session *model.Session, reason model.EndReason, now time.Time) {
	session.Status = model.SessionFinished
	session.CurrentPlayerID = ""
	session.EndReason = reason
	session.FinishedAt = &now

	c.logger.Info("session finished",
		slog.String("session_id", string(session.ID)),
		slog.String("reason", string(reason)))
}

func (c *Controller) publish(event *model.Event) {
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}

func (c *Controller) logFailure(op string, sessionID model.SessionID, playerID model.PlayerID, err error) {
	c.logger.Error("failed to commit "+op,
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.String("error", err.Error()))
}

func findMember(members []*model.Member, playerID model.PlayerID) *model.Member {
	for _, m := range members {
		if m.PlayerID == playerID {
			return m
		}
	}
	return nil
}

// nextPlayer returns the member after current in join order, wrapping around
func nextPlayer(members []*model.Member, current model.PlayerID) model.PlayerID {
	for i, m := range members {
		if m.PlayerID == current {
			return members[(i+1)%len(members)].PlayerID
		}
	}
	return ""
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	Join(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Snapshot, error)
	SubmitMove(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, placements []model.Placement) (*MoveResult, error)
	SkipTurn(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Snapshot, error)
	Snapshot(ctx context.Context, sessionID model.SessionID) (*model.Snapshot, error)
	WithSnapshot(ctx context.Context, sessionID model.SessionID, fn func(*model.Snapshot)) error
	Preview(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, placements []model.Placement) (*evaluator.Evaluation, error)
}

var _ ControllerInterface = (*Controller)(nil)

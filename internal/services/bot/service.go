package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/banglascrabble/internal/dependencies/clock"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/session"
	"github.com/mcoot/banglascrabble/internal/storage"
)

// MaxBotIterations is a safety limit for the ProcessBotActions loop
const MaxBotIterations = 1000

// Errors
var (
	ErrUnknownStrategy = errors.New("unknown bot strategy")
	ErrNotMember       = errors.New("only session members can add bots")
)

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionMove         BotActionType = "move"
	ActionSkip         BotActionType = "skip"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Word     string
	Score    int
}

// Service manages bot players in sessions
type Service struct {
	storage    storage.Storage
	sessions   session.ControllerInterface
	strategies map[string]Strategy
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	sessions session.ControllerInterface,
	strategies map[string]Strategy,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    store,
		sessions:   sessions,
		strategies: strategies,
		clock:      clk,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// CreateBotPlayer creates a new bot player and saves it to storage
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	id := "bot-" + uuid.NewString()
	player := &model.Player{
		ID:          model.PlayerID(id),
		Username:    id,
		DisplayName: displayName,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

// AddBot creates a bot player and seats it in the session.
// Only a member of the session can add bots.
func (s *Service) AddBot(ctx context.Context, sessionID model.SessionID, requestingPlayerID model.PlayerID, strategy string) (*model.Player, error) {
	if strategy == "" {
		strategy = model.BotStrategyWord
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	snapshot, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.Member(requestingPlayerID) == nil {
		return nil, ErrNotMember
	}

	botCount := 0
	for _, m := range snapshot.Members {
		if m.Player.IsBot {
			botCount++
		}
	}

	displayName := fmt.Sprintf("%s %d", model.BotStrategyDisplayName(strategy), botCount+1)
	bot, err := s.CreateBotPlayer(ctx, displayName, strategy)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Join(ctx, sessionID, bot.ID); err != nil {
		_ = s.storage.DeletePlayer(ctx, bot.ID)
		return nil, err
	}

	s.logger.Info("bot added to session",
		slog.String("session_id", string(sessionID)),
		slog.String("bot_id", string(bot.ID)),
		slog.String("bot_name", displayName),
		slog.String("strategy", strategy),
	)

	return bot, nil
}

// ProcessBotActions plays every consecutive bot turn until a human holds the
// turn or the session leaves the active state. It returns the actions taken.
func (s *Service) ProcessBotActions(ctx context.Context, sessionID model.SessionID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		snapshot, err := s.sessions.Snapshot(ctx, sessionID)
		if err != nil {
			return actions, err
		}
		if snapshot.Session.Status != model.SessionActive {
			break
		}
		current := snapshot.CurrentPlayer
		if current == nil || !current.IsBot {
			break // Human's turn
		}

		action, err := s.takeTurn(ctx, snapshot, current)
		if err != nil {
			return actions, err
		}
		actions = append(actions, action.BotAction)

		if action.finished {
			actions = append(actions, BotAction{Type: ActionGameComplete})
			break
		}
	}

	return actions, nil
}

type turnResult struct {
	BotAction
	finished bool
}

func (s *Service) takeTurn(ctx context.Context, snapshot *model.Snapshot, bot *model.Player) (*turnResult, error) {
	member := snapshot.Member(bot.ID)
	if member == nil {
		return nil, model.ErrPlayerNotFound
	}

	placements := s.strategyForPlayer(bot).ChooseMove(snapshot, member.Rack)
	if len(placements) > 0 {
		result, err := s.sessions.SubmitMove(ctx, snapshot.Session.ID, bot.ID, placements)
		switch {
		case err == nil:
			s.logger.Debug("bot played word",
				slog.String("session_id", string(snapshot.Session.ID)),
				slog.String("bot_id", string(bot.ID)),
				slog.String("word", result.Move.Word))
			return &turnResult{
				BotAction: BotAction{Type: ActionMove, PlayerID: bot.ID, Word: result.Move.Word, Score: result.Move.Score},
				finished:  result.Snapshot.Session.Status == model.SessionFinished,
			}, nil
		case errors.Is(err, model.ErrInvalidMove):
			// Fall through to a skip so the turn still advances
			s.logger.Warn("bot move rejected",
				slog.String("session_id", string(snapshot.Session.ID)),
				slog.String("bot_id", string(bot.ID)),
				slog.String("code", model.RuleCode(err)))
		default:
			return nil, err
		}
	}

	after, err := s.sessions.SkipTurn(ctx, snapshot.Session.ID, bot.ID)
	if err != nil {
		return nil, err
	}
	return &turnResult{
		BotAction: BotAction{Type: ActionSkip, PlayerID: bot.ID},
		finished:  after.Session.Status == model.SessionFinished,
	}, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// the word strategy, then any registered strategy
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	if st, ok := s.strategies[model.BotStrategyWord]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return NewPassStrategy()
}

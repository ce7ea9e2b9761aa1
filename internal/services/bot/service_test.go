package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/banglascrabble/internal/dependencies/mocks"
	"github.com/mcoot/banglascrabble/internal/locks"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/bot"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/evaluator"
	"github.com/mcoot/banglascrabble/internal/services/scoring"
	"github.com/mcoot/banglascrabble/internal/services/session"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
	"github.com/mcoot/banglascrabble/internal/storage"
	"github.com/mcoot/banglascrabble/internal/storage/memory"
	"github.com/mcoot/banglascrabble/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *memory.Storage
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom

	sessions   *session.Controller
	botService *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	dictService := dictionary.New(logger)
	eval := evaluator.New(dictService, scoring.New())
	s.sessions = session.NewController(s.store, locks.NewRegistry[model.SessionID](), tiles.New(s.mockRandom), eval, nil, s.mockClock, logger)

	strategies := map[string]bot.Strategy{
		model.BotStrategyWord: bot.NewWordStrategy(dictService, s.mockRandom),
		model.BotStrategyPass: bot.NewPassStrategy(),
	}
	s.botService = bot.NewService(s.store, s.sessions, strategies, s.mockClock, logger)
}

func (s *ServiceSuite) createPlayer(id string) model.PlayerID {
	p := &model.Player{
		ID:          model.PlayerID(id),
		Username:    id,
		DisplayName: id,
		IsGuest:     true,
		CreatedAt:   s.mockClock.Now(),
	}
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))
	return p.ID
}

// sessionWithHost creates a session with one human member
func (s *ServiceSuite) sessionWithHost() (model.SessionID, model.PlayerID) {
	host := s.createPlayer("host")
	sess, err := s.sessions.CreateSession(s.ctx)
	s.Require().NoError(err)
	_, err = s.sessions.Join(s.ctx, sess.ID, host)
	s.Require().NoError(err)
	return sess.ID, host
}

func (s *ServiceSuite) setRack(id model.SessionID, player model.PlayerID, letters ...model.Letter) {
	sess, err := s.store.GetSession(s.ctx, id)
	s.Require().NoError(err)
	members, err := s.store.ListMembers(s.ctx, id)
	s.Require().NoError(err)
	for _, m := range members {
		if m.PlayerID == player {
			m.Rack = letters
		}
	}
	sess.Version++
	s.Require().NoError(s.store.Apply(s.ctx, &storage.Changeset{Session: sess, Members: members}))
}

func (s *ServiceSuite) snapshot(id model.SessionID) *model.Snapshot {
	snap, err := s.sessions.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	return snap
}

// CreateBotPlayer tests

func (s *ServiceSuite) TestCreateBotPlayer() {
	player, err := s.botService.CreateBotPlayer(s.ctx, "Wordsmith 1", model.BotStrategyWord)
	s.Require().NoError(err)

	s.Equal("Wordsmith 1", player.DisplayName)
	s.True(player.IsBot)
	s.True(player.IsGuest)
	s.Equal(model.BotStrategyWord, player.BotStrategy)
	s.Equal(string(player.ID), player.Username)

	retrieved, err := s.store.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(retrieved.IsBot)
}

// AddBot tests

func (s *ServiceSuite) TestAddBotJoinsAndActivates() {
	id, host := s.sessionWithHost()

	botPlayer, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyWord)
	s.Require().NoError(err)
	s.Equal("Wordsmith 1", botPlayer.DisplayName)

	snap := s.snapshot(id)
	s.Require().Len(snap.Members, 2)
	s.Equal(botPlayer.ID, snap.Members[1].Player.ID)
	s.True(snap.Members[1].Player.IsBot)
	s.Equal(model.SessionActive, snap.Session.Status)
	s.Equal(host, snap.Session.CurrentPlayerID)
}

func (s *ServiceSuite) TestAddBotDefaultsToWordStrategy() {
	id, host := s.sessionWithHost()

	botPlayer, err := s.botService.AddBot(s.ctx, id, host, "")
	s.Require().NoError(err)
	s.Equal(model.BotStrategyWord, botPlayer.BotStrategy)
}

func (s *ServiceSuite) TestAddBotSequentialNaming() {
	id, host := s.sessionWithHost()

	bot1, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
	s.Require().NoError(err)
	bot2, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
	s.Require().NoError(err)

	s.Equal("Passer 1", bot1.DisplayName)
	s.Equal("Passer 2", bot2.DisplayName)
}

func (s *ServiceSuite) TestAddBotUnknownStrategy() {
	id, host := s.sessionWithHost()

	_, err := s.botService.AddBot(s.ctx, id, host, "genius")
	s.ErrorIs(err, bot.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestAddBotRequiresMembership() {
	id, _ := s.sessionWithHost()
	outsider := s.createPlayer("outsider")

	_, err := s.botService.AddBot(s.ctx, id, outsider, model.BotStrategyWord)
	s.ErrorIs(err, bot.ErrNotMember)
}

func (s *ServiceSuite) TestAddBotToFullSession() {
	id, host := s.sessionWithHost()
	for range 3 {
		_, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
		s.Require().NoError(err)
	}

	_, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
	s.ErrorIs(err, model.ErrSessionFull)
	s.Len(s.snapshot(id).Members, 4)
}

// ProcessBotActions tests

func (s *ServiceSuite) TestProcessBotActionsIdleOnHumanTurn() {
	id, host := s.sessionWithHost()
	_, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyWord)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsIdleInWaitingSession() {
	id, _ := s.sessionWithHost()

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsBotPlaysWord() {
	id, host := s.sessionWithHost()
	botPlayer, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyWord)
	s.Require().NoError(err)
	s.setRack(id, botPlayer.ID, "ব", "ই")

	_, err = s.sessions.SkipTurn(s.ctx, id, host)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	s.Require().Len(actions, 1)
	s.Equal(bot.ActionMove, actions[0].Type)
	s.Equal(botPlayer.ID, actions[0].PlayerID)
	s.Equal("বই", actions[0].Word)

	snap := s.snapshot(id)
	s.Equal(host, snap.Session.CurrentPlayerID)
	s.Equal(model.Letter("ব"), snap.Session.Board[7*model.BoardSize])
	s.Equal(actions[0].Score, snap.Member(botPlayer.ID).Score)
}

func (s *ServiceSuite) TestProcessBotActionsBotWithoutWordSkips() {
	id, host := s.sessionWithHost()
	botPlayer, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyWord)
	s.Require().NoError(err)
	s.setRack(id, botPlayer.ID, "ঙ", "ঞ")

	_, err = s.sessions.SkipTurn(s.ctx, id, host)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	s.Require().Len(actions, 1)
	s.Equal(bot.ActionSkip, actions[0].Type)
	s.Equal(host, s.snapshot(id).Session.CurrentPlayerID)
}

func (s *ServiceSuite) TestProcessBotActionsCascadesThroughBots() {
	id, host := s.sessionWithHost()
	for range 2 {
		_, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
		s.Require().NoError(err)
	}

	_, err := s.sessions.SkipTurn(s.ctx, id, host)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	s.Require().Len(actions, 2)
	s.Equal(bot.ActionSkip, actions[0].Type)
	s.Equal(bot.ActionSkip, actions[1].Type)
	s.Equal(host, s.snapshot(id).Session.CurrentPlayerID)
}

func (s *ServiceSuite) TestProcessBotActionsReportsGameComplete() {
	id, host := s.sessionWithHost()
	_, err := s.botService.AddBot(s.ctx, id, host, model.BotStrategyPass)
	s.Require().NoError(err)

	// host, bot, host, bot: the fourth consecutive skip ends the session
	_, err = s.sessions.SkipTurn(s.ctx, id, host)
	s.Require().NoError(err)
	_, err = s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)
	_, err = s.sessions.SkipTurn(s.ctx, id, host)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, id)
	s.Require().NoError(err)

	s.Require().Len(actions, 2)
	s.Equal(bot.ActionSkip, actions[0].Type)
	s.Equal(bot.ActionGameComplete, actions[1].Type)
	s.Equal(model.EndReasonAllSkipped, s.snapshot(id).Session.EndReason)
}

func (s *ServiceSuite) TestProcessBotActionsUnknownSession() {
	_, err := s.botService.ProcessBotActions(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/banglascrabble/internal/dependencies/mocks"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage/memory"
	"github.com/mcoot/banglascrabble/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

// CreateGuestPlayer tests

func (s *ServiceSuite) TestCreateGuestPlayerSucceeds() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.NotEmpty(session.TokenID)
	s.Equal("alice", session.Player.Username)
	s.Equal("Alice", session.Player.DisplayName)
	s.True(session.Player.IsGuest)
	s.NotEmpty(session.PlayerID)
}

func (s *ServiceSuite) TestCreateGuestPlayerDefaultsDisplayName() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "  alice ", "")
	s.Require().NoError(err)

	s.Equal("alice", session.Player.Username)
	s.Equal("alice", session.Player.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestPlayerPersistsPlayer() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	player, err := s.storage.GetPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestPlayerRejectsTakenUsername() {
	_, err := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")
	s.Require().NoError(err)

	_, err = s.service.CreateGuestPlayer(s.ctx, "alice", "Other Alice")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestCreateGuestPlayerRejectsBadUsername() {
	_, err := s.service.CreateGuestPlayer(s.ctx, "   ", "Alice")
	s.ErrorIs(err, ErrInvalidUsername)

	_, err = s.service.CreateGuestPlayer(s.ctx, "abcdefghijklmnopqrstuvwxyz0123456", "Alice")
	s.ErrorIs(err, ErrInvalidUsername)
}

func (s *ServiceSuite) TestCreateGuestPlayerAcceptsBanglaUsername() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "খেলোয়াড়", "")
	s.Require().NoError(err)
	s.Equal("খেলোয়াড়", session.Player.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestPlayerSessionIsValid() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	validated, err := s.service.ValidateSession(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.PlayerID, validated.PlayerID)
	s.Equal(session.TokenID, validated.TokenID)
}

// RegisterPlayer tests

func (s *ServiceSuite) TestRegisterPlayerSucceeds() {
	session, err := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.Player.DisplayName)
	s.False(session.Player.IsGuest)
}

func (s *ServiceSuite) TestRegisterPlayerPersistsRegistration() {
	session, _ := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	rp, err := s.storage.GetRegisteredPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.Equal("alice", rp.Username)
	s.NotEmpty(rp.PasswordHash)
	s.NotEqual("password123", rp.PasswordHash)
}

func (s *ServiceSuite) TestRegisterPlayerFailsIfUsernameExists() {
	_, _ = s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.RegisterPlayer(s.ctx, "alice", "different", "Alice2")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterPlayerFailsIfGuestHoldsUsername() {
	_, _ = s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	_, err := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterPlayerRejectsShortPassword() {
	_, err := s.service.RegisterPlayer(s.ctx, "alice", "abc", "Alice")
	s.ErrorIs(err, ErrWeakPassword)

	_, err = s.storage.GetPlayerByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, _ := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(registered.PlayerID, session.PlayerID)
	s.NotEqual(registered.TokenID, session.TokenID)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsForGuest() {
	_, _ = s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	_, err := s.service.Login(s.ctx, "alice", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// ValidateSession tests

func (s *ServiceSuite) TestValidateSessionSucceeds() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	validated, err := s.service.ValidateSession(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.Token, validated.Token)
	s.Equal("Alice", validated.Player.DisplayName)
}

func (s *ServiceSuite) TestValidateSessionFailsWithInvalidToken() {
	_, err := s.service.ValidateSession(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWhenExpired() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWithForeignSecret() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	other := New(s.storage, s.clock, Config{Secret: "another-secret"}, testutil.NopLogger())
	_, err := other.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionRejectsUnsignedToken() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "forged",
		Subject:   string(session.PlayerID),
		Issuer:    DefaultConfig().Issuer,
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, forged)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsForDeletedPlayer() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, session.PlayerID))

	_, err := s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

// InvalidateSession tests

func (s *ServiceSuite) TestInvalidateSessionRevokesToken() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSessionLeavesOtherTokens() {
	registered, _ := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")
	second, _ := s.service.Login(s.ctx, "alice", "password123")

	s.service.InvalidateSession(registered.Token)

	_, err := s.service.ValidateSession(s.ctx, second.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestInvalidateSessionNoopForUnknownToken() {
	s.service.InvalidateSession("unknown_token")
	s.Equal(0, s.service.RevokedCount())
}

// GetPlayer tests

func (s *ServiceSuite) TestGetPlayerSucceeds() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")

	player, err := s.service.GetPlayer(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}

func (s *ServiceSuite) TestGetPlayerFailsWithInvalidToken() {
	_, err := s.service.GetPlayer(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

// CleanExpiredSessions tests

func (s *ServiceSuite) TestCleanExpiredSessionsForgetsExpiredRevocations() {
	session1, _ := s.service.CreateGuestPlayer(s.ctx, "alice", "Alice")
	s.service.InvalidateSession(session1.Token)

	s.clock.Advance(12 * time.Hour)
	session2, _ := s.service.CreateGuestPlayer(s.ctx, "bob", "Bob")
	s.service.InvalidateSession(session2.Token)
	s.Equal(2, s.service.RevokedCount())

	s.clock.Advance(13 * time.Hour)
	s.service.CleanExpiredSessions()
	s.Equal(1, s.service.RevokedCount())

	// Still rejected, now by expiry
	_, err := s.service.ValidateSession(s.ctx, session1.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(s.ctx, session2.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

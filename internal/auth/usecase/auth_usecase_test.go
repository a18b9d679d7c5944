package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"job-portal/internal/auth/config"
	"job-portal/internal/auth/domain/repository"
	"job-portal/internal/auth/policy"
	"job-portal/internal/auth/usecase"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Mock token service
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

type AuthUsecaseTestSuite struct {
	suite.Suite
	tokenSvc *mockTokenService
	bus      *eventbus.EventBus
	events   chan eventbus.Event
	uc       *usecase.AuthUsecase
}

func (suite *AuthUsecaseTestSuite) SetupTest() {
	suite.tokenSvc = &mockTokenService{}
	suite.bus = eventbus.NewEventBus(nil)
	suite.events = make(chan eventbus.Event, 8)
	for _, eventType := range []string{
		eventbus.EventTypeSessionIssued,
		eventbus.EventTypeSessionCleared,
		eventbus.EventTypeAccessDenied,
	} {
		suite.bus.Subscribe(eventType, func(ctx context.Context, event eventbus.Event) error {
			suite.events <- event
			return nil
		})
	}

	engine, err := policy.NewEngine(policy.DefaultRules())
	require.NoError(suite.T(), err)

	cfg := &config.Config{
		JWTSecretKey:   "test-secret-key-32-characters-long-12345",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 10 * time.Hour,
		CookieName:     "token",
	}
	suite.uc = usecase.NewAuthUsecase(suite.tokenSvc, engine, suite.bus, cfg, nil)
}

func (suite *AuthUsecaseTestSuite) nextEvent() eventbus.Event {
	select {
	case ev := <-suite.events:
		return ev
	case <-time.After(time.Second):
		suite.T().Fatal("timeout waiting for event")
		return nil
	}
}

func (suite *AuthUsecaseTestSuite) TestIssueSession_Success() {
	suite.tokenSvc.On("GenerateToken", mock.Anything, "a@x.com").Return("signed-token", nil)

	session, err := suite.uc.IssueSession(context.Background(), usecase.SessionRequest{Email: " a@x.com "})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "a@x.com", session.Email)
	assert.Equal(suite.T(), "signed-token", session.Token)
	assert.Equal(suite.T(), 10*time.Hour, session.ExpiresAt.Sub(session.IssuedAt))
	assert.Equal(suite.T(), eventbus.EventTypeSessionIssued, suite.nextEvent().Type())
	suite.tokenSvc.AssertExpectations(suite.T())
}

func (suite *AuthUsecaseTestSuite) TestIssueSession_EmptyEmail() {
	session, err := suite.uc.IssueSession(context.Background(), usecase.SessionRequest{Email: "  "})

	assert.Nil(suite.T(), session)
	assert.ErrorIs(suite.T(), err, usecase.ErrEmailRequired)
	suite.tokenSvc.AssertNotCalled(suite.T(), "GenerateToken", mock.Anything, mock.Anything)
}

func (suite *AuthUsecaseTestSuite) TestIssueSession_SigningFails() {
	suite.tokenSvc.On("GenerateToken", mock.Anything, "a@x.com").Return("", errors.New("hsm offline"))

	_, err := suite.uc.IssueSession(context.Background(), usecase.SessionRequest{Email: "a@x.com"})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "hsm offline")
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_UniformError() {
	for _, cause := range []error{errors.New("expired"), errors.New("bad signature"), errors.New("malformed")} {
		suite.tokenSvc.On("ValidateToken", mock.Anything, cause.Error()).Return(nil, cause).Once()

		claims, err := suite.uc.ValidateToken(context.Background(), cause.Error())

		assert.Nil(suite.T(), claims)
		assert.Equal(suite.T(), repository.ErrTokenInvalid, err)
	}
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_SameSentinelAsService() {
	suite.tokenSvc.On("ValidateToken", mock.Anything, "forged").Return(nil, repository.ErrTokenInvalid)

	_, err := suite.uc.ValidateToken(context.Background(), "forged")

	assert.Same(suite.T(), repository.ErrTokenInvalid, err)
	assert.Equal(suite.T(), 401, apperrors.HTTPStatus(err))
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_Success() {
	claims := &repository.Claims{Email: "a@x.com"}
	suite.tokenSvc.On("ValidateToken", mock.Anything, "good").Return(claims, nil)

	got, err := suite.uc.ValidateToken(context.Background(), "good")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "a@x.com", got.Email)
}

func (suite *AuthUsecaseTestSuite) TestAuthorize_Allowed() {
	err := suite.uc.Authorize(context.Background(), policy.RuleApplicantSelf, policy.Input{
		AuthEmail: "a@x.com",
		Request:   map[string]interface{}{"email": "a@x.com"},
	})
	assert.NoError(suite.T(), err)
}

func (suite *AuthUsecaseTestSuite) TestAuthorize_Denied() {
	err := suite.uc.Authorize(context.Background(), policy.RuleApplicantSelf, policy.Input{
		AuthEmail: "a@x.com",
		Request:   map[string]interface{}{"email": "b@x.com"},
	})

	assert.ErrorIs(suite.T(), err, usecase.ErrAccessDenied)
	assert.True(suite.T(), apperrors.IsForbidden(err))
	assert.Equal(suite.T(), eventbus.EventTypeAccessDenied, suite.nextEvent().Type())
}

func (suite *AuthUsecaseTestSuite) TestAuthorize_UnknownRule() {
	err := suite.uc.Authorize(context.Background(), "missing.rule", policy.Input{AuthEmail: "a@x.com"})

	assert.ErrorIs(suite.T(), err, policy.ErrUnknownRule)
	assert.NotErrorIs(suite.T(), err, usecase.ErrAccessDenied)
}

func (suite *AuthUsecaseTestSuite) TestEndSession_PublishesEvent() {
	suite.uc.EndSession(context.Background(), "a@x.com")

	ev := suite.nextEvent()
	assert.Equal(suite.T(), eventbus.EventTypeSessionCleared, ev.Type())
	assert.Equal(suite.T(), "a@x.com", ev.Data())
}

func TestAuthUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(AuthUsecaseTestSuite))
}

func TestNewAuthUsecase_NilBus(t *testing.T) {
	tokenSvc := &mockTokenService{}
	tokenSvc.On("GenerateToken", mock.Anything, "a@x.com").Return("t", nil)
	engine, err := policy.NewEngine(policy.DefaultRules())
	require.NoError(t, err)

	uc := usecase.NewAuthUsecase(tokenSvc, engine, nil, &config.Config{AccessTokenTTL: time.Hour}, nil)

	session, err := uc.IssueSession(context.Background(), usecase.SessionRequest{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "t", session.Token)
}

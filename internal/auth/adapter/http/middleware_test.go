package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "job-portal/internal/auth/adapter/http"
	"job-portal/internal/auth/domain/repository"
	"job-portal/internal/auth/policy"
	"job-portal/internal/auth/usecase"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockAuthUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockAuthUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC, "token")
	suite.app = fiber.New()
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	msg, _ := payload["message"].(string)
	return msg
}

func (suite *MiddlewareTestSuite) TestProtect_Success() {
	suite.app.Use(suite.middleware.Protect())
	suite.app.Get("/protected", func(c *fiber.Ctx) error {
		email, ok := authhttp.GetUserEmail(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		ctxEmail, ok := utils.UserEmail(c.UserContext())
		if !ok || ctxEmail != email {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(email)
	})

	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "a@x.com"}, nil)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})

	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(suite.T(), "a@x.com", string(body))
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) TestProtect_NoCookie() {
	reached := false
	suite.app.Use(suite.middleware.Protect())
	suite.app.Get("/protected", func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(http.StatusOK)
	})

	resp, err := suite.app.Test(httptest.NewRequest("GET", "/protected", nil))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), authhttp.MsgUnauthorized, decodeMessage(suite.T(), resp))
	assert.False(suite.T(), reached)
	suite.mockUC.AssertNotCalled(suite.T(), "ValidateToken", mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestProtect_InvalidCookie() {
	suite.app.Use(suite.middleware.Protect())
	suite.app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	suite.mockUC.On("ValidateToken", mock.Anything, "tampered").
		Return(nil, repository.ErrTokenInvalid)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tampered"})

	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), authhttp.MsgUnauthorized, decodeMessage(suite.T(), resp))
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) TestProtect_IgnoresAuthorizationHeader() {
	suite.app.Use(suite.middleware.Protect())
	suite.app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	suite.mockUC.AssertNotCalled(suite.T(), "ValidateToken", mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestRequireOwner_Match() {
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "a@x.com"}, nil)
	suite.mockUC.On("Authorize", mock.Anything, policy.RuleApplicantSelf, policy.Input{
		AuthEmail: "a@x.com",
		Request:   map[string]interface{}{"email": "a@x.com"},
	}).Return(nil)

	suite.app.Get("/applications",
		suite.middleware.Protect(),
		suite.middleware.RequireOwner(policy.RuleApplicantSelf, authhttp.QueryTarget("email")),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) },
	)

	req := httptest.NewRequest("GET", "/applications?email=a@x.com", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})

	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) TestRequireOwner_Mismatch() {
	reached := false
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "a@x.com"}, nil)
	suite.mockUC.On("Authorize", mock.Anything, policy.RuleApplicantSelf, mock.Anything).
		Return(usecase.ErrAccessDenied)

	suite.app.Get("/applications",
		suite.middleware.Protect(),
		suite.middleware.RequireOwner(policy.RuleApplicantSelf, authhttp.QueryTarget("email")),
		func(c *fiber.Ctx) error {
			reached = true
			return c.SendStatus(http.StatusOK)
		},
	)

	req := httptest.NewRequest("GET", "/applications?email=b@x.com", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})

	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
	assert.Equal(suite.T(), authhttp.MsgForbidden, decodeMessage(suite.T(), resp))
	assert.False(suite.T(), reached)
}

func (suite *MiddlewareTestSuite) TestRequireOwner_WithoutSession() {
	suite.app.Get("/applications",
		suite.middleware.RequireOwner(policy.RuleApplicantSelf, authhttp.QueryTarget("email")),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) },
	)

	resp, err := suite.app.Test(httptest.NewRequest("GET", "/applications?email=a@x.com", nil))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	suite.mockUC.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestRequireOwner_BuilderErrors() {
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "a@x.com"}, nil)

	failWith := func(err error) authhttp.InputBuilder {
		return func(*fiber.Ctx) (policy.Input, error) { return policy.Input{}, err }
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }
	suite.app.Get("/missing", suite.middleware.Protect(),
		suite.middleware.RequireOwner(policy.RuleJobOwner, failWith(fmt.Errorf("load job: %w", apperrors.ErrJobNotFound))), ok)
	suite.app.Get("/broken", suite.middleware.Protect(),
		suite.middleware.RequireOwner(policy.RuleJobOwner, failWith(errors.New("mongo: connection refused"))), ok)

	req := httptest.NewRequest("GET", "/missing", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(suite.T(), "job not found", decodeMessage(suite.T(), resp))

	req = httptest.NewRequest("GET", "/broken", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})
	resp, err = suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusInternalServerError, resp.StatusCode)
	suite.mockUC.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestRequestID_GeneratedAndEchoed() {
	suite.app.Use(suite.middleware.RequestID())
	suite.app.Get("/", func(c *fiber.Ctx) error {
		rid, ok := utils.RequestID(c.UserContext())
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(rid)
	})

	resp, err := suite.app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(suite.T(), err)
	body, _ := io.ReadAll(resp.Body)
	assert.NotEmpty(suite.T(), string(body))
	assert.Equal(suite.T(), string(body), resp.Header.Get(fiber.HeaderXRequestID))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "fixed-id")
	resp, err = suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "fixed-id", resp.Header.Get(fiber.HeaderXRequestID))
}

func (suite *MiddlewareTestSuite) TestSecurityHeaders() {
	suite.app.Use(suite.middleware.SecurityHeaders())
	suite.app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := suite.app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(suite.T(), "DENY", resp.Header.Get("X-Frame-Options"))
}

func (suite *MiddlewareTestSuite) TestCORS_AllowsCredentials() {
	suite.app.Use(suite.middleware.CORS("http://localhost:5173"))
	suite.app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := suite.app.Test(req)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(suite.T(), "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

package http

import (
	"context"
	"errors"

	"job-portal/internal/auth/policy"
	"job-portal/internal/auth/usecase"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Response messages for the admission gate.
const (
	MsgUnauthorized = "Unauthorized access"
	MsgForbidden    = "Access forbidden"
)

const (
	localsUserEmail = "user_email"
	localsRequestID = "request_id"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.AuthUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// CORS allows the listed origins to send the session cookie.
func (m *AuthMiddleware) CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RequestID assigns X-Request-ID and copies it into the user context for logging.
func (m *AuthMiddleware) RequestID() fiber.Handler {
	assign := requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: localsRequestID,
	})
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
			c.Request().Header.Set(fiber.HeaderXRequestID, rid)
		}
		c.SetUserContext(utils.WithRequestID(c.UserContext(), rid))
		return assign(c)
	}
}

// Protect admits only requests carrying a valid session cookie.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(m.cookieName)
		if token == "" {
			return unauthorized(c)
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(localsUserEmail, claims.Email)
		c.SetUserContext(utils.WithUserEmail(c.UserContext(), claims.Email))
		return c.Next()
	}
}

// InputBuilder extracts the request and resource side of an ownership check.
type InputBuilder func(c *fiber.Ctx) (policy.Input, error)

// QueryTarget compares the session email against a query parameter.
func QueryTarget(param string) InputBuilder {
	return func(c *fiber.Ctx) (policy.Input, error) {
		return policy.Input{
			Request: map[string]interface{}{param: c.Query(param)},
		}, nil
	}
}

// RequireOwner must run after Protect. It evaluates rule against the session
// identity and rejects mismatches before the handler touches the store.
func (m *AuthMiddleware) RequireOwner(rule string, build InputBuilder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := GetUserEmail(c)
		if !ok {
			return unauthorized(c)
		}

		in, err := build(c)
		if err != nil {
			status := apperrors.HTTPStatus(err)
			if status >= fiber.StatusInternalServerError {
				return err
			}
			return c.Status(status).JSON(fiber.Map{"message": apperrors.Message(err)})
		}
		in.AuthEmail = email

		if err := m.usecase.Authorize(c.UserContext(), rule, in); err != nil {
			if errors.Is(err, usecase.ErrAccessDenied) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": MsgForbidden,
				})
			}
			return err
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": MsgUnauthorized,
	})
}

// GetUserEmail returns the email Protect stored for this request.
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(localsUserEmail).(string)
	return email, ok && email != ""
}

// UserEmailFromContext is the context.Context counterpart of GetUserEmail.
func UserEmailFromContext(ctx context.Context) (string, bool) {
	return utils.UserEmail(ctx)
}

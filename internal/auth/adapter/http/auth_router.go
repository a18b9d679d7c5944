package http

import (
	"strings"
	"time"

	"job-portal/internal/auth/config"
	"job-portal/internal/auth/usecase"
	apperrors "job-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie describes the cookie that carries the session token. It is
// always HttpOnly and never carries Max-Age, so it ends with the browser.
type SessionCookie struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite string
}

// SessionCookieFromConfig derives the cookie attributes from the environment:
// Secure with SameSite=None in production, SameSite=Strict elsewhere.
func SessionCookieFromConfig(cfg *config.Config) SessionCookie {
	return SessionCookie{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure(),
		SameSite: cfg.CookieSameSite(),
	}
}

func (s SessionCookie) with(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     s.Path,
		Domain:   s.Domain,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: strings.ToLower(s.SameSite),
	}
}

func (s SessionCookie) expired() *fiber.Cookie {
	c := s.with("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

// AuthHTTPHandler serves POST /jwt and POST /logout.
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	cookie  SessionCookie
}

func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cookie SessionCookie) *AuthHTTPHandler {
	return &AuthHTTPHandler{usecase: uc, cookie: cookie}
}

// RegisterRoutes mounts POST /jwt and POST /logout. Neither requires a session.
func (h *AuthHTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/jwt", h.IssueToken)
	router.Post("/logout", h.Logout)
}

// IssueToken signs the posted identity and sets it as the session cookie.
func (h *AuthHTTPHandler) IssueToken(c *fiber.Ctx) error {
	var req usecase.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	session, err := h.usecase.IssueSession(c.UserContext(), req)
	if err != nil {
		if status := apperrors.HTTPStatus(err); status < fiber.StatusInternalServerError {
			return c.Status(status).JSON(fiber.Map{"message": apperrors.Message(err)})
		}
		return err
	}

	c.Cookie(h.cookie.with(session.Token))
	return c.JSON(fiber.Map{"success": true})
}

// Logout clears the session cookie. The token itself stays valid until exp.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	var email string
	if token := c.Cookies(h.cookie.Name); token != "" {
		if claims, err := h.usecase.ValidateToken(c.UserContext(), token); err == nil {
			email = claims.Email
		}
	}
	h.usecase.EndSession(c.UserContext(), email)

	c.Cookie(h.cookie.expired())
	return c.JSON(fiber.Map{"success": true})
}

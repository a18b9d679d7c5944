package auth

import (
	"fmt"

	authhttp "job-portal/internal/auth/adapter/http"
	"job-portal/internal/auth/adapter/security"
	"job-portal/internal/auth/config"
	"job-portal/internal/auth/domain/repository"
	"job-portal/internal/auth/policy"
	"job-portal/internal/auth/usecase"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthModule wires session issuing, token checks and ownership rules.
// Other modules take Middleware to guard their routes.
type AuthModule struct {
	Config     *config.Config
	Tokens     repository.TokenService
	Policies   *policy.Engine
	Usecase    usecase.AuthUsecaseInterface
	Middleware *authhttp.AuthMiddleware

	handler *authhttp.AuthHTTPHandler
}

// NewAuthModule validates cfg and builds the module. bus may be nil.
func NewAuthModule(cfg *config.Config, bus eventbus.EventBusInterface, log logger.Logger) (*AuthModule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}

	tokens, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	policies, err := policy.NewEngine(policy.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("failed to compile access rules: %w", err)
	}

	uc := usecase.NewAuthUsecase(tokens, policies, bus, cfg, log)
	return &AuthModule{
		Config:     cfg,
		Tokens:     tokens,
		Policies:   policies,
		Usecase:    uc,
		Middleware: authhttp.NewAuthMiddleware(uc, cfg.CookieName),
		handler:    authhttp.NewAuthHTTPHandler(uc, authhttp.SessionCookieFromConfig(cfg)),
	}, nil
}

// RegisterRoutes registers POST /jwt and POST /logout on router.
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.RegisterRoutes(router)
}

// Stop is a no-op; tokens are stateless.
func (am *AuthModule) Stop() error {
	return nil
}

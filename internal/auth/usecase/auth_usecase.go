package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-portal/internal/auth/config"
	"job-portal/internal/auth/domain/model"
	"job-portal/internal/auth/domain/repository"
	"job-portal/internal/auth/policy"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"
)

var (
	ErrEmailRequired = apperrors.New(apperrors.KindInvalid, "email is required")
	ErrAccessDenied  = fmt.Errorf("access denied: %w", apperrors.ErrForbidden)
)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	IssueSession(ctx context.Context, req SessionRequest) (*model.Session, error)
	EndSession(ctx context.Context, email string)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	Authorize(ctx context.Context, rule string, in policy.Input) error
}

// SessionRequest is the identity posted to POST /jwt. It is trusted as-is.
type SessionRequest struct {
	Email string `json:"email"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	tokenSvc repository.TokenService
	policies *policy.Engine
	bus      eventbus.EventBusInterface
	config   *config.Config
	log      logger.Logger
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of AuthUsecase. bus may be nil.
func NewAuthUsecase(
	tokenSvc repository.TokenService,
	policies *policy.Engine,
	bus eventbus.EventBusInterface,
	cfg *config.Config,
	log logger.Logger,
) *AuthUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &AuthUsecase{
		tokenSvc: tokenSvc,
		policies: policies,
		bus:      bus,
		config:   cfg,
		log:      log.WithComponent("auth"),
		now:      time.Now,
	}
}

// IssueSession signs a token for the posted identity.
func (uc *AuthUsecase) IssueSession(ctx context.Context, req SessionRequest) (*model.Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	issuedAt := uc.now()
	token, err := uc.tokenSvc.GenerateToken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	uc.publish(ctx, eventbus.EventTypeSessionIssued, email)
	uc.log.WithContext(ctx).Debugf("session issued for %s", email)

	return &model.Session{
		Email:     email,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(uc.config.AccessTokenTTL),
	}, nil
}

// EndSession only records the logout; tokens are stateless and cannot be revoked server-side.
func (uc *AuthUsecase) EndSession(ctx context.Context, email string) {
	uc.publish(ctx, eventbus.EventTypeSessionCleared, email)
}

// ValidateToken collapses every token failure into repository.ErrTokenInvalid.
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, repository.ErrTokenInvalid
	}
	return claims, nil
}

// Authorize evaluates a named ownership rule. A denial returns ErrAccessDenied.
func (uc *AuthUsecase) Authorize(ctx context.Context, rule string, in policy.Input) error {
	decision, err := uc.policies.Evaluate(ctx, rule, in)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", rule, err)
	}
	if !decision.Allowed {
		uc.log.WithContext(ctx).WithFields(map[string]interface{}{
			"rule":   rule,
			"reason": decision.Reason,
		}).Warn("access denied")
		uc.publish(ctx, eventbus.EventTypeAccessDenied, decision)
		return ErrAccessDenied
	}
	return nil
}

func (uc *AuthUsecase) publish(ctx context.Context, eventType string, data interface{}) {
	if uc.bus == nil {
		return
	}
	uc.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewBasicEventWithSource(eventType, data, "auth"))
}

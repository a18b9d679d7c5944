package repository

import (
	"context"

	apperrors "job-portal/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is the only validation failure callers ever see. Expired,
// malformed and forged tokens are indistinguishable.
var ErrTokenInvalid = apperrors.New(apperrors.KindUnauthenticated, "token is invalid")

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, email string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

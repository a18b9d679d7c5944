package security

import (
	"context"
	"errors"
	"time"

	"job-portal/internal/auth/config"
	"job-portal/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

// JWTokenService signs and verifies HS256 session tokens.
type JWTokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a JWTokenService.
type Option func(*JWTokenService)

// WithClock replaces time.Now, letting tests move past the token lifetime.
func WithClock(now func() time.Time) Option {
	return func(s *JWTokenService) {
		s.now = now
	}
}

func checkSigningConfig(cfg *config.Config) error {
	var errs []error
	if cfg.JWTSecretKey == "" {
		errs = append(errs, errors.New("jwt secret key cannot be empty"))
	}
	if cfg.JWTIssuer == "" {
		errs = append(errs, errors.New("jwt issuer cannot be empty"))
	}
	if cfg.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("jwt access token TTL must be positive"))
	}
	return errors.Join(errs...)
}

// NewJWTokenService reports every missing signing setting at once.
func NewJWTokenService(cfg *config.Config, opts ...Option) (*JWTokenService, error) {
	if err := checkSigningConfig(cfg); err != nil {
		return nil, err
	}

	s := &JWTokenService{
		key:    []byte(cfg.JWTSecretKey),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.AccessTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// TTL returns the lifetime stamped on every issued token.
func (s *JWTokenService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken signs a token for email. sub and email carry the same value.
func (s *JWTokenService) GenerateToken(ctx context.Context, email string) (string, error) {
	issued := jwt.NewNumericDate(s.now())
	claims := &repository.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// ValidateToken verifies signature, issuer and expiry and returns the claims.
func (s *JWTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, repository.ErrTokenInvalid
	}

	claims := &repository.Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid || claims.Email == "" {
		return nil, repository.ErrTokenInvalid
	}
	return claims, nil
}

package testutil

import (
	"time"

	"job-portal/internal/auth/config"
	"job-portal/internal/auth/domain/model"
)

// TestSecret is long enough for HS256 and never used outside tests.
const TestSecret = "test-secret-key-that-is-at-least-32-chars-long"

// ConfigFixture provides auth configurations for tests
type ConfigFixture struct{}

// NewConfigFixture creates a new ConfigFixture instance
func NewConfigFixture() *ConfigFixture {
	return &ConfigFixture{}
}

// Development returns a config with Strict, non-secure cookies.
func (f *ConfigFixture) Development() *config.Config {
	return &config.Config{
		JWTSecretKey:   TestSecret,
		JWTIssuer:      "job-portal-test",
		AccessTokenTTL: 10 * time.Hour,
		CookieName:     "token",
		CookiePath:     "/",
		Environment:    "development",
	}
}

// Production returns a config with Secure, SameSite=None cookies.
func (f *ConfigFixture) Production() *config.Config {
	cfg := f.Development()
	cfg.Environment = "production"
	return cfg
}

// SessionFixture provides test data for Session model
type SessionFixture struct{}

// NewSessionFixture creates a new SessionFixture instance
func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

// ValidSession returns a session that has not expired yet
func (f *SessionFixture) ValidSession() *model.Session {
	return f.SessionFor("applicant@example.com")
}

// SessionFor returns a live session for email
func (f *SessionFixture) SessionFor(email string) *model.Session {
	now := time.Now()
	return &model.Session{
		Email:     email,
		Token:     "token-" + email,
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Hour),
	}
}

// ExpiredSession returns a session past its expiry
func (f *SessionFixture) ExpiredSession() *model.Session {
	issued := time.Now().Add(-11 * time.Hour)
	return &model.Session{
		Email:     "expired@example.com",
		Token:     "expired-token",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(10 * time.Hour),
	}
}

// TestData aggregates all fixtures
type TestData struct {
	Configs  *ConfigFixture
	Sessions *SessionFixture
}

// NewTestData creates a new TestData instance with all fixtures
func NewTestData() *TestData {
	return &TestData{
		Configs:  NewConfigFixture(),
		Sessions: NewSessionFixture(),
	}
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	sameSiteNone   = "None"
	sameSiteStrict = "Strict"

	envProduction = "production"
)

// Config holds all configuration for the auth module.
type Config struct {
	// JWT Configuration
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"job-portal"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"10h"`

	// Cookie Configuration. The session cookie carries no Max-Age, so browsers
	// drop it when they close even though the token itself lives AccessTokenTTL.
	CookieName   string `env:"COOKIE_NAME" envDefault:"token"`
	CookiePath   string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`

	// Environment drives the Secure and SameSite cookie attributes.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error() +
			". Please ensure all required environment variables are set.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values env.Parse cannot express as tags.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("access_token_ttl must be positive")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, envProduction) || strings.EqualFold(c.Environment, "prod")
}

// CookieSecure is true in production only.
func (c *Config) CookieSecure() bool {
	return c.IsProduction()
}

// CookieSameSite is "None" in production (cross-site SPA) and "Strict" otherwise.
func (c *Config) CookieSameSite() string {
	if c.IsProduction() {
		return sameSiteNone
	}
	return sameSiteStrict
}

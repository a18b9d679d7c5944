package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/caarlos0/env/v6"
)

// CounterMode selects how applicationCount is maintained on a job.
type CounterMode string

const (
	// CounterAtomic issues a single $inc update.
	CounterAtomic CounterMode = "atomic"
	// CounterReadModifyWrite reads the count, adds the delta and writes it back.
	// Concurrent submissions against the same job can lose updates in this mode.
	CounterReadModifyWrite CounterMode = "read-modify-write"
)

// Valid reports whether m is a known mode.
func (m CounterMode) Valid() bool {
	return m == CounterAtomic || m == CounterReadModifyWrite
}

// RedisConfig holds the connection settings for the application event stream.
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_TLS" envDefault:"false"`
	StreamMaxLength int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"10000"`
}

// GetAddr returns host:port for the redis client.
func (r *RedisConfig) GetAddr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// RealtimeConfig holds the websocket applicant feed settings.
type RealtimeConfig struct {
	// ClientSendChannelBuffer bounds the events queued per websocket client.
	// Events for a client whose buffer is full are dropped.
	ClientSendChannelBuffer int `env:"WS_SEND_BUFFER" envDefault:"16"`
}

// Config holds all configuration for the portal module.
type Config struct {
	MongoDBURI             string      `env:"MONGODB_URI,required"`
	DatabaseName           string      `env:"DATABASE_NAME" envDefault:"job_portal"`
	JobsCollection         string      `env:"JOBS_COLLECTION" envDefault:"jobs"`
	ApplicationsCollection string      `env:"APPLICATIONS_COLLECTION" envDefault:"job_applications"`
	CounterMode            CounterMode `env:"COUNTER_MODE" envDefault:"atomic"`

	// RestrictJobApplicants puts the per-job applicant listing behind a
	// session owned by the job's hr_email. Off by default.
	RestrictJobApplicants bool `env:"RESTRICT_JOB_APPLICANTS" envDefault:"false"`

	Redis    RedisConfig
	Realtime RealtimeConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load portal configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values env.Parse cannot express as tags.
func (c *Config) Validate() error {
	if c.MongoDBURI == "" {
		return errors.New("MONGODB_URI environment variable is not set")
	}
	if c.DatabaseName == "" {
		return errors.New("database_name is required")
	}
	if !c.CounterMode.Valid() {
		return fmt.Errorf("unknown COUNTER_MODE %q (want %q or %q)", c.CounterMode, CounterAtomic, CounterReadModifyWrite)
	}
	if c.Realtime.ClientSendChannelBuffer <= 0 {
		c.Realtime.ClientSendChannelBuffer = 16
	}
	return nil
}

// DefaultConfig returns a Config with default values for local development.
func DefaultConfig() *Config {
	return &Config{
		MongoDBURI:             "mongodb://localhost:27017",
		DatabaseName:           "job_portal",
		JobsCollection:         "jobs",
		ApplicationsCollection: "job_applications",
		CounterMode:            CounterAtomic,
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			MaxRetries:      3,
			PoolSize:        10,
			MinIdleConns:    2,
			StreamMaxLength: 10000,
		},
		Realtime: RealtimeConfig{
			ClientSendChannelBuffer: 16,
		},
	}
}

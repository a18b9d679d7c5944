package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisDialTimeout = 5 * time.Second
	redisIOTimeout   = 2 * time.Second
)

// ClientOptions translates the config into go-redis options.
func (r *RedisConfig) ClientOptions() *redis.Options {
	opts := &redis.Options{
		Addr:            r.GetAddr(),
		Password:        r.Password,
		DB:              r.Database,
		MaxRetries:      r.MaxRetries,
		PoolSize:        r.PoolSize,
		MinIdleConns:    r.MinIdleConns,
		DialTimeout:     redisDialTimeout,
		ReadTimeout:     redisIOTimeout,
		WriteTimeout:    redisIOTimeout,
		ConnMaxIdleTime: 10 * time.Minute,
	}
	if r.EnableTLS {
		opts.TLSConfig = &tls.Config{ServerName: r.Host, MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient opens a client for the application event stream. It does not
// dial until first use.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(cfg.ClientOptions())
}

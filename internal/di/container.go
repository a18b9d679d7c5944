package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"job-portal/internal/auth"
	authconfig "job-portal/internal/auth/config"
	"job-portal/internal/portal"
	portalconfig "job-portal/internal/portal/config"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns the modules and the connections they share, and shuts them
// down in reverse order.
type Container struct {
	mu sync.RWMutex
	// Module instances
	AuthModule   *auth.AuthModule
	PortalModule *portal.PortalModule
	// Connections
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Configuration
	AuthConfig   *authconfig.Config
	PortalConfig *portalconfig.Config

	EventBus *eventbus.EventBus
	Logger   logger.Logger
}

// NewContainer creates a container with a single event bus shared by all modules.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{
		EventBus: eventbus.NewEventBus(log.WithComponent("eventbus")),
		Logger:   log,
	}
}

// InitializeAuth initializes the session and authorization module.
func (c *Container) InitializeAuth(authConfig *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	authModule, err := auth.NewAuthModule(authConfig, c.EventBus, c.Logger.WithComponent("auth"))
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthConfig = authConfig
	c.AuthModule = authModule
	return nil
}

// InitializePortal initializes the job portal module on mongoDB. redisClient
// may be nil, which disables the persisted event stream.
func (c *Container) InitializePortal(mongoDB *mongo.Database, redisClient *redis.Client, portalConfig *portalconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before portal module")
	}
	if mongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before portal module")
	}

	portalModule, err := portal.NewPortalModule(
		portalConfig,
		mongoDB,
		redisClient,
		c.EventBus,
		c.AuthModule.Middleware,
		c.Logger.WithComponent("portal"),
	)
	if err != nil {
		return fmt.Errorf("failed to create portal module: %w", err)
	}

	c.MongoDB = mongoDB
	c.RedisClient = redisClient
	c.PortalConfig = portalConfig
	c.PortalModule = portalModule
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetPortalModule returns the portal module instance
func (c *Container) GetPortalModule() *portal.PortalModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PortalModule
}

// HealthCheck pings MongoDB and, when enabled, Redis.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.PortalModule != nil {
		if err := c.PortalModule.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup drains the event bus, stops the modules in reverse order of
// initialization and closes the Redis client. The Mongo client is disconnected by its owner.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	// Let queued application events reach listeners and the stream first.
	if c.EventBus != nil {
		if err := c.EventBus.Drain(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if c.PortalModule != nil {
		if err := c.PortalModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop portal module: %w", err))
		}
		c.PortalModule = nil
	}

	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop auth module: %w", err))
		}
		c.AuthModule = nil
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.RedisClient = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	c.Logger.Info("Closing DI container resources...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("cleanup errors occurred: %v", err)
		return err
	}

	c.Logger.Info("DI container resources closed.")
	return nil
}

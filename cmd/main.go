package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	authconfig "job-portal/internal/auth/config"
	"job-portal/internal/di"
	portalconfig "job-portal/internal/portal/config"
	"job-portal/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

// ServerConfig holds the listener and CORS settings.
type ServerConfig struct {
	Host             string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port             string `env:"SERVER_PORT" envDefault:"5000"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	appLogger := logger.NewFromEnv().WithComponent("main")
	if err := run(appLogger); err != nil {
		appLogger.Fatalf("job portal stopped: %v", err)
	}
}

func run(appLogger logger.Logger) error {
	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		return fmt.Errorf("load server configuration: %w", err)
	}
	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		return err
	}
	portalCfg, err := portalconfig.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := connectMongo(ctx, portalCfg.MongoDBURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Errorf("disconnect MongoDB: %v", err)
		}
	}()
	appLogger.Infof("connected to MongoDB, database %s", portalCfg.DatabaseName)

	redisClient, err := connectRedis(ctx, &portalCfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		appLogger.Infof("application events are streamed to Redis at %s", portalCfg.Redis.GetAddr())
	}

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("close container: %v", err)
		}
	}()
	if err := container.InitializeAuth(authCfg); err != nil {
		return err
	}
	if err := container.InitializePortal(mongoClient.Database(portalCfg.DatabaseName), redisClient, portalCfg); err != nil {
		return err
	}

	app := newApp(container, serverCfg, appLogger)

	addr := net.JoinHostPort(serverCfg.Host, serverCfg.Port)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()
	appLogger.Infof("listening on %s", addr)

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		appLogger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Errorf("forced shutdown: %v", err)
	}
	return nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// connectRedis returns nil when the event stream is disabled.
func connectRedis(ctx context.Context, cfg *portalconfig.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client := portalconfig.NewRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis at %s: %w", cfg.GetAddr(), err)
	}
	return client, nil
}

func newApp(container *di.Container, serverCfg *ServerConfig, appLogger logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Job Portal API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.WithContext(c.UserContext()).Errorf("%s %s: %v", c.Method(), c.Path(), err)
				return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	authModule := container.GetAuthModule()
	mw := authModule.Middleware
	app.Use(recover.New(), mw.RequestID(), mw.CORS(serverCfg.CORSAllowOrigins), mw.SecurityHeaders())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Job portal server running")
	})
	app.Get("/health", healthHandler(container, appLogger))

	authModule.RegisterRoutes(app)
	container.GetPortalModule().RegisterRoutes(app)
	return app
}

func healthHandler(container *di.Container, appLogger logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(ctx); err != nil {
			appLogger.Errorf("health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":       "HEALTHY",
			"timestamp":    time.Now().UTC(),
			"event_stream": container.RedisClient != nil,
		})
	}
}

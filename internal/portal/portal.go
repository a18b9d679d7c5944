package portal

import (
	"context"
	"fmt"

	authhttp "job-portal/internal/auth/adapter/http"
	httpadapter "job-portal/internal/portal/adapter/http"
	"job-portal/internal/portal/adapter/persistence"
	"job-portal/internal/portal/adapter/persistence/mongodb"
	"job-portal/internal/portal/config"
	"job-portal/internal/portal/domain/repository"
	"job-portal/internal/portal/usecase"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// PortalModule wires the job and application stores, their usecases and the
// HTTP and websocket surfaces.
type PortalModule struct {
	Config             *config.Config
	JobRepo            *mongodb.JobRepository
	ApplicationRepo    *mongodb.ApplicationRepository
	JobUsecase         usecase.JobUsecaseInterface
	ApplicationUsecase usecase.ApplicationUsecaseInterface
	RealtimeUsecase    usecase.RealtimeUsecase
	// EventStore is nil when Redis is disabled.
	EventStore  repository.EventStore
	RedisClient *redis.Client
	Logger      logger.Logger

	jobHandler         *httpadapter.JobHandler
	applicationHandler *httpadapter.ApplicationHandler
	wsHandler          *httpadapter.WebSocketHandler
}

// NewPortalModule builds the module on db. redisClient may be nil.
func NewPortalModule(
	cfg *config.Config,
	db *mongo.Database,
	redisClient *redis.Client,
	bus eventbus.EventBusInterface,
	mw *authhttp.AuthMiddleware,
	log logger.Logger,
) (*PortalModule, error) {
	if db == nil {
		return nil, fmt.Errorf("portal module requires a database")
	}
	return NewPortalModuleWithCollections(
		cfg,
		mongodb.WrapCollection(db.Collection(cfg.JobsCollection)),
		mongodb.WrapCollection(db.Collection(cfg.ApplicationsCollection)),
		redisClient,
		bus,
		mw,
		log,
	)
}

// NewPortalModuleWithCollections builds the module on the given collections.
func NewPortalModuleWithCollections(
	cfg *config.Config,
	jobs mongodb.Collection,
	applications mongodb.Collection,
	redisClient *redis.Client,
	bus eventbus.EventBusInterface,
	mw *authhttp.AuthMiddleware,
	log logger.Logger,
) (*PortalModule, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid portal config: %w", err)
	}
	if mw == nil {
		return nil, fmt.Errorf("portal module requires the auth middleware")
	}
	if log == nil {
		log = logger.NewLogger()
	}
	if bus == nil {
		bus = eventbus.NewEventBus(log)
	}

	jobRepo := mongodb.NewJobRepository(jobs, cfg.CounterMode, log)
	appRepo := mongodb.NewApplicationRepository(applications, log)

	var store repository.EventStore
	if redisClient != nil {
		store = persistence.NewRedisEventStore(redisClient, cfg.Redis.StreamMaxLength, log)
	}

	jobUC := usecase.NewJobUsecase(jobRepo, bus, log)
	appUC := usecase.NewApplicationUsecase(appRepo, jobRepo, bus, log)
	rt := usecase.NewRealtimeUsecase(store, log)
	usecase.AttachEventHandlers(bus, rt, store, log)

	log.Infof("portal module ready (counter mode %s, restrict applicants %t, event stream %t)",
		jobRepo.CounterMode(), cfg.RestrictJobApplicants, store != nil)

	return &PortalModule{
		Config:             cfg,
		JobRepo:            jobRepo,
		ApplicationRepo:    appRepo,
		JobUsecase:         jobUC,
		ApplicationUsecase: appUC,
		RealtimeUsecase:    rt,
		EventStore:         store,
		RedisClient:        redisClient,
		Logger:             log,
		jobHandler:         httpadapter.NewJobHandler(jobUC, log),
		applicationHandler: httpadapter.NewApplicationHandler(appUC, jobUC, mw, cfg.RestrictJobApplicants, log),
		wsHandler: httpadapter.NewWebSocketHandler(
			rt, jobUC, mw, cfg.RestrictJobApplicants, cfg.Realtime.ClientSendChannelBuffer, log,
		),
	}, nil
}

// RegisterRoutes mounts the job, application and feed routes on router.
func (m *PortalModule) RegisterRoutes(router fiber.Router) {
	m.jobHandler.RegisterRoutes(router)
	m.applicationHandler.RegisterRoutes(router)
	m.wsHandler.RegisterRoutes(router)
}

// HealthCheck pings Redis when the event stream is enabled.
func (m *PortalModule) HealthCheck(ctx context.Context) error {
	if m.RedisClient == nil {
		return nil
	}
	if err := m.RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the portal module. The Redis client is owned by
// the caller.
func (m *PortalModule) Stop() error {
	m.Logger.Info("Stopping portal module...")
	return nil
}

package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cerdowizard/node-wallet/internal/auth"
	"github.com/cerdowizard/node-wallet/internal/config"
	"github.com/cerdowizard/node-wallet/internal/events"
	"github.com/cerdowizard/node-wallet/internal/identity"
	"github.com/cerdowizard/node-wallet/internal/ledger"
	"github.com/cerdowizard/node-wallet/internal/metrics"
	"github.com/cerdowizard/node-wallet/internal/middleware"
	"github.com/cerdowizard/node-wallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Kafka  events.MessageWriter
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	publisher, err := newPublisher(d)
	if err != nil {
		return err
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(d.Logger))

	recorder := metrics.NewRecorder()
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", recorder.Handler())

	// Services and handlers
	var (
		store        ledger.Store
		identityRepo identity.Repository
	)
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		mem := ledger.NewMemoryStore()
		store = mem
		identityRepo = identity.NewMemoryRepository(mem)
	}
	ledgerSvc := ledger.NewService(store, d.Logger,
		ledger.WithPublisher(publisher),
		ledger.WithObserver(recorder),
	)
	identitySvc := identity.NewService(identityRepo, d.Cfg.DefaultCurrency)
	issuer := auth.NewIssuer(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL,
		auth.WithRefreshToken(d.Cfg.JWTRefreshSecret, d.Cfg.RefreshTokenTTL),
	)
	validate := validator.New()

	authHandler := auth.NewHandler(identitySvc, issuer, validate, d.Logger)
	walletHandler := wallet.NewHandler(ledgerSvc, validate)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	jwt := middleware.JWTAuth(issuer)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, d.Logger), jwt)

	// Protected routes
	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	} else {
		d.Logger.Warn("redis not configured, idempotency keys are not enforced")
	}
	RegisterWalletRoutes(api.Group("/wallet", jwt), walletHandler, idempotency)

	return nil
}

func newPublisher(d Deps) (ledger.Publisher, error) {
	switch d.Cfg.EventsBackend {
	case config.EventsRedis:
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when EVENTS_BACKEND=%s", config.EventsRedis)
		}
		return events.NewRedisPublisher(d.Cache, ""), nil
	case config.EventsKafka:
		if d.Kafka == nil {
			return nil, fmt.Errorf("kafka writer is required when EVENTS_BACKEND=%s", config.EventsKafka)
		}
		return events.NewKafkaPublisher(d.Kafka), nil
	default:
		return events.NewLogPublisher(d.Logger), nil
	}
}

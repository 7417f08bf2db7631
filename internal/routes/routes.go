package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pollgate/pollgate/internal/config"
	"github.com/pollgate/pollgate/internal/kvstore"
	"github.com/pollgate/pollgate/internal/middleware"
	"github.com/pollgate/pollgate/internal/notification"
	"github.com/pollgate/pollgate/internal/poll"
	"github.com/pollgate/pollgate/internal/token"
	"github.com/pollgate/pollgate/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var pollRepo poll.Repository
	if d.DB != nil {
		pollRepo = poll.NewPostgresRepository(d.DB)
	} else {
		pollRepo = poll.NewMemoryRepository()
	}
	pollSvc := poll.NewService(pollRepo, d.Logger)
	pollHandler := poll.NewHandler(pollSvc)

	var challengeStore kvstore.Store
	if d.Cache != nil {
		challengeStore = kvstore.NewRedis(d.Cache)
	} else {
		challengeStore = kvstore.NewMemory()
	}
	notifier := notification.NewLoggerNotifier(d.Logger)
	// Challenges outlive the session window slightly so a verify racing the
	// final tick still resolves against provider state.
	provider := verification.NewLocalProvider(challengeStore, notifier, d.Cfg.VerificationTTL+30*time.Second)

	signer := token.NewSigner(d.Cfg.TokenSecret, d.Cfg.TokenTTL)
	gate := verification.NewGate(pollRepo, provider, signer,
		verification.Config{SessionTTL: d.Cfg.VerificationTTL}, d.Logger)
	verificationHandler := verification.NewHandler(gate, signer)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterPollRoutes(api, pollHandler, d)
	RegisterVerificationRoutes(api, verificationHandler, d)

	return nil
}

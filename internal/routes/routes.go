package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/auth"
	"github.com/instacash-tt/instacash/internal/config"
	"github.com/instacash-tt/instacash/internal/ledger"
	"github.com/instacash-tt/instacash/internal/middleware"
	"github.com/instacash-tt/instacash/internal/notification"
	"github.com/instacash-tt/instacash/internal/session"
	"github.com/instacash-tt/instacash/internal/storage"
	"github.com/instacash-tt/instacash/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// the wallet runs against the snapshot-file store; without redis, sessions
// live in process memory and the idempotency/rate-limit middlewares are
// skipped.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var ledgerOpts []ledger.Option
	if d.Cfg.AllowSelfTransfer {
		ledgerOpts = append(ledgerOpts, ledger.AllowSelfTransfer())
	}

	var (
		accountRepo   account.Repository
		ledgerBackend ledger.Ledger
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		ledgerBackend = ledger.NewPostgresLedger(d.DB, ledgerOpts...)
	} else {
		store := storage.NewFileStore(d.Cfg.StorePath)
		state, err := store.Load(context.Background())
		if err != nil {
			return err
		}
		keeper := storage.NewKeeper(store)
		accountRepo = account.NewPersistentRepository(keeper, state.Accounts)
		ledgerBackend = ledger.NewPersistent(keeper, state, ledgerOpts...)
	}

	var sessions session.Store
	if d.Cache != nil {
		sessions = session.NewRedisStore(d.Cache)
	} else {
		sessions = session.NewMemoryStore()
	}

	accounts := account.NewService(accountRepo)
	authSvc := auth.NewService(accounts, sessions, d.Cfg.SessionTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := transfer.NewService(accounts, ledgerBackend, authSvc, notifier, d.Logger, d.Cfg.SeedBalance)

	authHandler := auth.NewHandler(authSvc)
	walletHandler := transfer.NewHandler(walletSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, walletSvc, d.Logger)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, 5))

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(authSvc))
	RegisterWalletRoutes(protected, walletHandler)

	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const serviceName = "champions-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.SlogLevel())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEnabled, cfg.OTelEndpoint)
	if err != nil {
		slog.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	// Reference data
	cat, err := catalog.LoadFromFile(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "panels", len(cat.Panels()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := cat.Seed(ctx, database.DB); err != nil {
		slog.Error("catalog seed failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	storeHandler := logging.NewStoreHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, cfg.SlogLevel()),
		storeHandler,
	)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Sessions
	hub := identity.NewSessionHub()

	// Services
	progressService := services.NewProgressService(database.DB)
	submissionService := services.NewSubmissionService(database.DB, progressService)
	moderationService := services.NewModerationService(database.DB)
	ledgerService := services.NewLedgerService(database.DB)
	voteService := services.NewVoteService(database.DB)
	reviewService := services.NewReviewService(database.DB, progressService)
	championService := services.NewChampionService(database.DB, cfg.IsAdmin)
	notificationService := services.NewNotificationService(database.DB,
		services.NewPersistedSource(database.DB),
		services.NewDemoSource(cat),
	)
	unsubscribe := notificationService.SubscribeSessions(hub)
	dashboardService := services.NewDashboardService(ledgerService, progressService, notificationService, submissionService)

	// Handlers
	h := routes.Handlers{
		Health:        handlers.NewHealthHandler(database.DB, cat),
		Champions:     handlers.NewChampionHandler(championService),
		Catalog:       handlers.NewCatalogHandler(catalog.NewStore(database.DB), progressService),
		Submissions:   handlers.NewSubmissionHandler(submissionService),
		Reviews:       handlers.NewReviewHandler(reviewService, voteService),
		Progress:      handlers.NewProgressHandler(progressService),
		Scores:        handlers.NewScoreHandler(ledgerService, dashboardService),
		Notifications: handlers.NewNotificationHandler(notificationService, hub),
		Moderation:    handlers.NewModerationHandler(moderationService, submissionService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, championService, hub, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	unsubscribe()
	close(cleanupDone)
	storeHandler.Stop()
	sentry.Flush(2 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

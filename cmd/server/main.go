package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(os.Getenv("APP_ENV"))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, dbLogHandler)))

	// Log cleanup (30-day retention)
	cleanup, err := logging.StartCleanup(db, logging.DefaultRetention)
	if err != nil {
		slog.Error("failed to schedule log cleanup", "error", err)
		os.Exit(1)
	}

	// Photo storage
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		slog.Error("storage setup failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	processor := media.NewProcessor(cfg.MaxUploadBytes)

	// Email
	mailer, err := services.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		slog.Error("email service setup failed", "error", err)
		os.Exit(1)
	}
	if !mailer.IsEnabled() {
		slog.Warn("SES_FROM_EMAIL not set, emails will not be sent")
	}

	// Services
	store := repository.NewGormStore(db)
	gate := services.NewMembershipGate(store.Families())
	authService := services.NewAuthService(store.Users(), cfg, mailer)
	userService := services.NewUserService(store.Users())
	familyService := services.NewFamilyService(store, gate, storage)
	childService := services.NewChildService(store.Children(), gate)
	inviteService := services.NewInviteService(store, gate, mailer, cfg)
	photoService := services.NewPhotoService(store.Photos(), gate, processor, storage)

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

	// Fiber app. The body limit leaves room for multipart framing around a
	// maximum size photo.
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	if cfg.StorageDriver == "local" {
		app.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	// Routes
	routes.Setup(app, cfg, store.Users(), gate, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Health: handlers.NewHealthHandler(db),
		User:   handlers.NewUserHandler(userService),
		Family: handlers.NewFamilyHandler(familyService, childService),
		Invite: handlers.NewInviteHandler(inviteService),
		Photo:  handlers.NewPhotoHandler(photoService, processor),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
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

	cleanup.Stop()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func newStorage(ctx context.Context, cfg *config.Config) (media.Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return media.NewS3Storage(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicURL)
	case "local":
		return media.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath)
	default:
		return nil, errors.New("unknown storage driver " + cfg.StorageDriver)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"action", c.Method()+" "+c.Path(),
			"error", err.Error(),
			"trace_id", c.Locals(requestid.ConfigDefault.ContextKey))
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.Error(message))
}

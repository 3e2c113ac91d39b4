package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/horizon-colors/internal/api/http"
	"github.com/i474232898/horizon-colors/internal/civiltime"
	"github.com/i474232898/horizon-colors/internal/colors"
	"github.com/i474232898/horizon-colors/internal/colors/pipeline"
	"github.com/i474232898/horizon-colors/internal/config"
	"github.com/i474232898/horizon-colors/internal/logging"
	"github.com/i474232898/horizon-colors/internal/scheduler"
	"github.com/i474232898/horizon-colors/internal/store"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	if envErr != nil {
		zl.Debug("no .env file loaded", zap.Error(envErr))
	}

	conv, err := civiltime.New(cfg.Timezone)
	if err != nil {
		zl.Fatal("failed to load timezone", zap.Error(err))
	}

	// Snapshot store on the configured backend.
	var backend store.Backend = store.NewDir(cfg.DataDir)
	if cfg.StoreBackend == "memory" {
		backend = store.NewMemory()
	}
	snapshots, err := store.New(backend, conv, cfg.ReadCacheEntries)
	if err != nil {
		zl.Fatal("failed to open snapshot store", zap.Error(err))
	}
	defer snapshots.Close()

	if cfg.FeedURL == "" {
		zl.Warn("FEED_URL is not set; updates will fail until it is configured")
	}
	ffmpeg := pipeline.NewFFmpeg(pipeline.Config{
		FeedURL: cfg.FeedURL,
		Binary:  cfg.FFmpegPath,
		Timeout: cfg.PipelineTimeout,
		Regions: cfg.Regions,
	}, zl)

	coordinator := colors.NewCoordinator(ffmpeg, snapshots, conv, cfg.Labels(), zl)
	resolver := colors.NewResolver(snapshots, conv, cfg.IntervalMinutes)

	// Scheduler that triggers an update at every civil boundary.
	sched := scheduler.New(coordinator, cfg.IntervalMinutes, conv.Location(), zl)
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}

	if cfg.RefreshOnStart {
		coordinator.RefreshIfStale(time.Duration(cfg.IntervalMinutes) * time.Minute)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "horizon-colors",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, resolver, coordinator, httpapi.Options{
		RecentDays:      cfg.RecentDays,
		Timezone:        cfg.Timezone,
		IntervalMinutes: cfg.IntervalMinutes,
	}, zl)

	go func() {
		zl.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}

	// The store is closed by a deferred call; let a run in flight finish first.
	sched.Stop()
	if err := coordinator.Wait(shutdownCtx); err != nil {
		zl.Warn("update still running at shutdown", zap.Error(err))
	}
}

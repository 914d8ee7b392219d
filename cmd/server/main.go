package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/whrrk/eduplatform/pkg/config"
	"github.com/whrrk/eduplatform/pkg/course"
	"github.com/whrrk/eduplatform/pkg/httpapi"
	"github.com/whrrk/eduplatform/pkg/storage"
	"github.com/whrrk/eduplatform/pkg/thread"
	"github.com/whrrk/eduplatform/pkg/video"
)

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	logger.Info("loaded configuration",
		slog.String("port", cfg.Port),
		slog.String("table", cfg.TableName),
		slog.String("videoBucket", cfg.VideoBucket),
		slog.String("dynamodbEndpoint", cfg.DynamoDBEndpoint),
		slog.String("logLevel", cfg.LogLevel))

	ctx := context.Background()

	store, err := storage.NewDynamoDBStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.HealthCheck(ctx); err != nil {
		logger.Error("store health check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Video operations fail per-request when no bucket is configured.
	var signer video.Signer
	if cfg.VideoBucket != "" {
		s3Signer, err := video.NewS3Signer(ctx, cfg)
		if err != nil {
			logger.Error("failed to initialize signer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		signer = s3Signer
	} else {
		logger.Warn("VIDEO_BUCKET not set, video endpoints disabled")
	}

	courses := course.NewService(store, logger)
	threads := thread.NewService(store, courses, logger)
	videos := video.NewService(store, signer, courses, logger)

	api := httpapi.New(courses, threads, videos, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.Router(cfg.AllowedOrigin),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := store.Close(); err != nil {
		logger.Error("failed to close store", slog.String("error", err.Error()))
	}

	logger.Info("server exited")
}

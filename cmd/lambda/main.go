package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/whrrk/eduplatform/pkg/config"
	"github.com/whrrk/eduplatform/pkg/course"
	"github.com/whrrk/eduplatform/pkg/lambdaapi"
	"github.com/whrrk/eduplatform/pkg/storage"
	"github.com/whrrk/eduplatform/pkg/thread"
	"github.com/whrrk/eduplatform/pkg/video"
)

// Clients are constructed once per cold start and reused across warm
// invocations.
func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	store, err := storage.NewDynamoDBStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var signer video.Signer
	if cfg.VideoBucket != "" {
		s3Signer, err := video.NewS3Signer(ctx, cfg)
		if err != nil {
			logger.Error("failed to initialize signer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		signer = s3Signer
	}

	courses := course.NewService(store, logger)
	threads := thread.NewService(store, courses, logger)
	videos := video.NewService(store, signer, courses, logger)

	handler := lambdaapi.New(courses, threads, videos, cfg.AllowedOrigin, logger)
	lambda.Start(handler.Handle)
}

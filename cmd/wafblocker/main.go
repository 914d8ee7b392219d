package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	"github.com/whrrk/eduplatform/pkg/config"
	"github.com/whrrk/eduplatform/pkg/wafblock"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load AWS config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blocker, err := wafblock.New(wafv2.NewFromConfig(awsCfg), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize blocker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lambda.Start(blocker.Handle)
}

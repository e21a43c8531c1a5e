package main

import (
	"context"
	"time"

	"discordllm/internal/bot"
	"discordllm/internal/config"
	"discordllm/internal/core"
	logpkg "discordllm/internal/log"
	"discordllm/internal/status"
	"discordllm/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	logger := logpkg.CreateLogger()
	defer func() {
		if appLog, ok := logger.(*logpkg.AppLogger); ok {
			_ = appLog.Close()
		}
	}()

	if dotenvErr != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadBotConfigFromEnv(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	storageInstance, err := storage.InitStorage(cfg.ModelCachePath, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() { _ = storageInstance.Close() }()

	cfg.Storage = storageInstance
	cfg.Logger = logger

	b, err := bot.New(cfg)
	if err != nil {
		logger.Fatal("Failed to create bot: %v", err)
	}
	defer func() { _ = b.Close() }()

	heartbeat := status.NewHeartbeat(cfg.HeartbeatPath, core.HeartbeatInterval, logger)
	heartbeat.Start()
	defer heartbeat.Stop()

	if cfg.StatusPort != "" {
		statusServer := status.NewServer(status.ServerConfig{
			Port:          cfg.StatusPort,
			HeartbeatPath: cfg.HeartbeatPath,
			StaleAfter:    core.HeartbeatStaleAfter,
			Metrics:       b.Metrics(),
			Logger:        logger,
		})
		statusServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = statusServer.Shutdown(ctx)
		}()
	}

	if err := b.Run(); err != nil {
		logger.Fatal("Bot error: %v", err)
	}
}

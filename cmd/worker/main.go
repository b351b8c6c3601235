package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"redesperanza/web/internal/cache"
	"redesperanza/web/internal/config"
	"redesperanza/web/internal/database"
	"redesperanza/web/internal/log"
	"redesperanza/web/internal/queue"
	"redesperanza/web/internal/session"
	"redesperanza/web/internal/storage"
	"redesperanza/web/internal/tasks"
	"redesperanza/web/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := log.FromConfig(cfg, "worker")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	tracker := upload.NewTracker(client, objectStore, objectStore, cfg.Upload.OrphanTTL, logger)

	// Redis and memory stores expire keys on their own.
	var sessions tasks.Sweeper
	if cfg.Session.Driver == config.SessionDriverPostgres {
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		defer pool.Close()
		sessions = session.NewPostgresStore(pool)
	}

	processor := tasks.NewProcessor(tracker, sessions, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	logger.Info().Str("stream", cfg.Worker.Stream).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited")
}

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/apiclient"
	"redesperanza/web/internal/cache"
	"redesperanza/web/internal/config"
	"redesperanza/web/internal/database"
	"redesperanza/web/internal/geocode"
	"redesperanza/web/internal/handlers"
	"redesperanza/web/internal/jobs"
	"redesperanza/web/internal/log"
	"redesperanza/web/internal/middleware"
	"redesperanza/web/internal/server"
	"redesperanza/web/internal/session"
	"redesperanza/web/internal/storage"
	"redesperanza/web/internal/upload"
	"redesperanza/web/internal/view"
	"redesperanza/web/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := log.FromConfig(cfg, "web")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		if cfg.Session.Driver != config.SessionDriverMemory {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Warn().Err(err).Msg("redis unavailable, running without upload tracking and maintenance")
		redisClient = nil
	}

	var dbPool *pgxpool.Pool
	if cfg.Session.Driver == config.SessionDriverPostgres {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
	}

	store, err := openSessionStore(ctx, cfg, redisClient, dbPool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}

	manager, err := session.NewManager(store, session.Options{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Log:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init sessions")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	views, err := view.New(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	deps := handlers.Deps{
		Log:      logger,
		Config:   cfg,
		API:      apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, logger),
		Sessions: middleware.NewSessions(manager, middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.IsProduction(), MaxAge: cfg.Session.TTL}, logger),
		Views:    views,
		Drafts:   wizard.NewDraftStore(store, cfg.Session.DraftTTL),
		Geocoder: geocode.New(cfg.Geocoder, &http.Client{Timeout: 10 * time.Second}, store, logger),
		Checks: map[string]handlers.Pinger{
			"sessions": store,
			"storage":  objectStore,
		},
	}

	if redisClient != nil {
		tracker := upload.NewTracker(redisClient, objectStore, objectStore, cfg.Upload.OrphanTTL, logger)
		deps.Uploads = upload.NewService(objectStore, tracker, cfg.Upload.MaxBytes, logger)
		deps.Pending = tracker
		deps.Checks["redis"] = cache.Checker{Client: redisClient}
	} else {
		deps.Uploads = upload.NewService(objectStore, nil, cfg.Upload.MaxBytes, logger)
	}

	handlerSet, err := handlers.NewHandlerSet(deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}
	httpServer, err := server.New(cfg, logger, handlerSet)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build http server")
	}

	scheduler := jobs.NewScheduler(redisClient, cfg.Worker.Stream, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	if err := httpServer.ListenAndRun(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
	release(logger, cfg.HTTP.ShutdownTimeout, scheduler, dbPool, redisClient)
}

func openSessionStore(ctx context.Context, cfg *config.AppConfig, redisClient *redis.Client, pool *pgxpool.Pool) (session.Store, error) {
	switch cfg.Session.Driver {
	case config.SessionDriverPostgres:
		store := session.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.SessionDriverMemory:
		return session.NewMemoryStore(), nil
	default:
		return session.NewRedisStore(redisClient), nil
	}
}

// release stops background work and closes connections once the server is done.
func release(logger zerolog.Logger, timeout time.Duration, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	select {
	case <-scheduler.Stop().Done():
	case <-time.After(timeout):
		logger.Warn().Msg("scheduler did not stop in time")
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}

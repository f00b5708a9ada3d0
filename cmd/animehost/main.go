package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"animehost/internal/cache"
	"animehost/internal/config"
	"animehost/internal/database"
	"animehost/internal/handlers"
	"animehost/internal/jobs"
	"animehost/internal/log"
	"animehost/internal/repository"
	"animehost/internal/server"
	"animehost/internal/session"
	"animehost/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	files, uploadDir, err := buildFileStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}

	sessions := buildSessionStore(cfg, redisClient)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, sessions, files, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, sessions, files, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Janitor, uploadDir, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitor := jobs.NewJanitor(redisClient, cfg.Janitor, uploadDir, repository.NewImageRepository(dbPool), logger)
	go func() {
		if err := janitor.Start(janitorCtx); err != nil && janitorCtx.Err() == nil {
			logger.Error().Err(err).Msg("janitor stopped")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stopJanitor, dbPool, redisClient)
}

func buildFileStore(ctx context.Context, cfg *config.AppConfig) (storage.FileStore, string, error) {
	if strings.EqualFold(cfg.Storage.Backend, "minio") {
		store, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		// No local dir to sweep; the janitor stays idle.
		return store, "", nil
	}

	store, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicPath)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}

func buildSessionStore(cfg *config.AppConfig, redisClient *redis.Client) session.Store {
	if strings.EqualFold(cfg.Session.Backend, "redis") {
		return session.NewRedisStore(redisClient, cfg.Session.Secret, cfg.Session.TTL)
	}
	return session.NewMemoryStore(cfg.Session.Secret, cfg.Session.TTL)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, stopJanitor context.CancelFunc, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		cancel := scheduler.Stop()
		cancel()
	}
	stopJanitor()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

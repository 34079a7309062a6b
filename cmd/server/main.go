package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ZaspDragon/timeclock-api/internal/api"
	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
	"github.com/ZaspDragon/timeclock-api/internal/core/service"
	"github.com/ZaspDragon/timeclock-api/internal/infrastructure/config"
	"github.com/ZaspDragon/timeclock-api/internal/infrastructure/db/bunt"
	mongodb "github.com/ZaspDragon/timeclock-api/internal/infrastructure/db/mongo"
	redisdb "github.com/ZaspDragon/timeclock-api/internal/infrastructure/db/redis"
	"github.com/ZaspDragon/timeclock-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}
	clock := domain.NewClock(loc)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Record store backend: hosted document store or local single-file store.
	var (
		timeLogRepo ports.TimeLogRepository
		authRepo    ports.AuthRepository
		db          *mongo.Database
	)
	switch cfg.Storage.Backend {
	case "local":
		bdb, err := bunt.Open(cfg.Storage.LocalPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.LocalPath).Msg("failed to open local store")
		}
		defer bdb.Close()
		timeLogRepo = bunt.NewTimeLogRepository(bdb)
		authRepo = bunt.NewAuthRepository(bdb)
		log.Info().Str("path", cfg.Storage.LocalPath).Msg("using local record store")
	default:
		client, database, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		db = database

		tlRepo := mongodb.NewTimeLogRepository(db)
		aRepo := mongodb.NewAuthRepository(db)
		if err := tlRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure time log indexes")
		}
		if err := aRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure user indexes")
		}
		timeLogRepo = tlRepo
		authRepo = aRepo
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	// Redis is optional: without it the double-submit guard degrades to the
	// store-level idempotency check alone.
	var (
		rdb   *goredis.Client
		dedup service.StampDedup
	)
	rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, stamp dedup disabled")
		rdb = nil
	} else {
		dedup = redisdb.NewStampDedup(rdb)
		defer rdb.Close()
	}

	e := api.NewRouter(api.RouterDeps{
		TimeLogRepo: timeLogRepo,
		AuthRepo:    authRepo,
		Dedup:       dedup,
		MongoDB:     db,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		Clock:       clock,
		Location:    loc,
		Logger:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

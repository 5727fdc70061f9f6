package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plumehq/plume-backend/internal/catalog"
	"github.com/plumehq/plume-backend/internal/cron"
	"github.com/plumehq/plume-backend/internal/offers"
	"github.com/plumehq/plume-backend/internal/rollups"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db"
	"github.com/plumehq/plume-backend/pkg/logger"
	"github.com/plumehq/plume-backend/pkg/metrics"
	"github.com/plumehq/plume-backend/pkg/migrate"
	"github.com/plumehq/plume-backend/pkg/redis"
)

const shutdownTimeout = 5 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "rollup-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "rollup-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	rollupMetrics := metrics.NewRollupMetrics(prometheus.DefaultRegisterer)

	offerRepo := offers.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	coefficientRepo := catalog.NewCoefficientRepository(dbClient.DB())
	rollupRepo := rollups.NewRepository(dbClient.DB())

	aggregator, err := offers.NewAggregator(offerRepo, cfg.Pricing, logg)
	if err != nil {
		logg.Error(ctx, "failed to create offer aggregator", err)
		os.Exit(1)
	}

	rollupCache := rollups.NewCache(redisClient, logg, cfg.Pricing.RollupCacheTTL)
	rollupService, err := rollups.NewService(
		aggregator, catalogRepo, coefficientRepo, rollupRepo, offerRepo,
		rollupCache, cfg.Rollup, logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create rollup service", err)
		os.Exit(1)
	}

	recomputeJob, err := cron.NewFullRecomputeJob(rollupService, cfg.Rollup, rollupMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create recompute job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(redisClient, cfg.App.Env), cfg.Rollup.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create worker lock", err)
		os.Exit(1)
	}

	worker, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(recomputeJob),
		Lock:     lock,
		Metrics:  rollupMetrics,
		Interval: cfg.Rollup.CronInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Rollup.MetricsPort,
		Handler: metricsMux(),
	}
	go func() {
		logg.Info(logg.WithField(ctx, "addr", metricsServer.Addr), "metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "starting rollup worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped with error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(context.Background(), "metrics server shutdown failed", err)
	}
	logg.Info(context.Background(), "rollup worker stopped")
}

func lockKey(client *redis.Client, env string) string {
	if env == "" {
		env = "dev"
	}
	return client.LockKey(fmt.Sprintf("rollup-worker:%s", env))
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

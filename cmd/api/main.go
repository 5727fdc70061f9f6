package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/plumehq/plume-backend/api/routes"
	"github.com/plumehq/plume-backend/internal/catalog"
	"github.com/plumehq/plume-backend/internal/offers"
	"github.com/plumehq/plume-backend/internal/rollups"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db"
	"github.com/plumehq/plume-backend/pkg/logger"
	"github.com/plumehq/plume-backend/pkg/migrate"
	"github.com/plumehq/plume-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	offerRepo := offers.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	coefficientRepo := catalog.NewCoefficientRepository(dbClient.DB())
	rollupRepo := rollups.NewRepository(dbClient.DB())

	aggregator, err := offers.NewAggregator(offerRepo, cfg.Pricing, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create offer aggregator", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(offerRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, coefficientRepo, cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	rollupCache := rollups.NewCache(redisClient, logg, cfg.Pricing.RollupCacheTTL)
	rollupService, err := rollups.NewService(
		aggregator, catalogRepo, coefficientRepo, rollupRepo, offerRepo,
		rollupCache, cfg.Rollup, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create rollup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			RedisPinger:    redisClient,
			CatalogService: catalogService,
			OfferService:   offerService,
			RollupService:  rollupService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

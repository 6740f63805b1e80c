package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luismarin/cartbase-backend/api/routes"
	"github.com/luismarin/cartbase-backend/internal/basket"
	"github.com/luismarin/cartbase-backend/internal/catalog"
	"github.com/luismarin/cartbase-backend/pkg/config"
	"github.com/luismarin/cartbase-backend/pkg/db"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/luismarin/cartbase-backend/pkg/metrics"
	"github.com/luismarin/cartbase-backend/pkg/migrate"
	"github.com/luismarin/cartbase-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	registry := prometheus.NewRegistry()
	basketMetrics := metrics.NewBasketMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	var lookup basket.ProductLookup
	if cfg.Catalog.LookupBaseURL != "" {
		lookup, err = catalog.NewHTTPLookup(cfg.Catalog, nil)
	} else {
		lookup, err = catalog.NewAdapter(catalogService)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create product lookup", err)
		os.Exit(1)
	}

	basketStore, err := basket.NewRedisStore(redisClient, cfg.Basket.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket store", err)
		os.Exit(1)
	}
	basketService, err := basket.NewService(basketStore, lookup, cfg.Basket, logg, basketMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, basketService, catalogService, registry),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

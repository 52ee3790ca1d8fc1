package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/agrilink/agrilink-backend/api/routes"
	"github.com/agrilink/agrilink-backend/internal/hubnetwork"
	"github.com/agrilink/agrilink-backend/internal/notifications"
	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/db"
	"github.com/agrilink/agrilink-backend/pkg/kv"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/migrate"
	"github.com/agrilink/agrilink-backend/pkg/redis"
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

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	requestRepo := orderrequests.NewRepository(dbClient.DB())
	requestService, err := orderrequests.NewService(requestRepo, notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order request service", err)
		os.Exit(1)
	}

	indexStore, err := kv.NewRedis(redisClient, "hubnetwork")
	if err != nil {
		logg.Error(context.Background(), "failed to create hub network store", err)
		os.Exit(1)
	}
	aggregator, err := hubnetwork.NewAggregator(context.Background(), indexStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create hub network aggregator", err)
		os.Exit(1)
	}

	reviewerService, err := reviewer.NewService(requestService, requestRepo, aggregator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviewer service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, requestService, reviewerService, notificationsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agrilink/agrilink-backend/internal/console"
	"github.com/agrilink/agrilink-backend/internal/feed"
	"github.com/agrilink/agrilink-backend/internal/hubnetwork"
	"github.com/agrilink/agrilink-backend/internal/poll"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/kv"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := console.NewClient(cfg.Console)
	if err != nil {
		logg.Error(context.Background(), "failed to create api client", err)
		os.Exit(1)
	}

	merger, err := feed.NewMerger(client, cfg.Poll.EphemeralTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed merger", err)
		os.Exit(1)
	}

	localStore := kv.NewMemory()

	aggregator, err := hubnetwork.NewAggregator(context.Background(), localStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create hub network aggregator", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting console")

	if err := aggregator.Rebuild(ctx, client); err != nil {
		logg.Error(ctx, "hub network rebuild failed, starting from snapshot", err)
	}

	fetchMetrics := metrics.NewFetchMetrics(prometheus.DefaultRegisterer)
	cache := &console.RequestCache{}

	schedulers := []*poll.Scheduler{}
	for _, source := range []poll.Source{
		console.NotificationSource(client, merger, cfg.Poll.NotificationInterval),
		console.RequestListSource(client, cache, console.ListQuery{}, cfg.Poll.RequestInterval),
	} {
		scheduler, err := poll.NewScheduler(source, logg, fetchMetrics)
		if err != nil {
			logg.Error(ctx, "failed to create poll scheduler", err)
			os.Exit(1)
		}
		if err := scheduler.Start(ctx); err != nil {
			logg.Error(ctx, "failed to start poll scheduler", err)
			os.Exit(1)
		}
		schedulers = append(schedulers, scheduler)
	}

	<-ctx.Done()
	for _, scheduler := range schedulers {
		scheduler.Stop()
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "console stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "console shutting down gracefully")
}

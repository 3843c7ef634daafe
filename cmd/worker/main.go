package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/stockdesk/internal/app"
	"github.com/odyssey-erp/stockdesk/internal/gateway"
	jobmetrics "github.com/odyssey-erp/stockdesk/internal/jobs"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
	"github.com/odyssey-erp/stockdesk/internal/platform/cache"
	"github.com/odyssey-erp/stockdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	redisOpts := cache.Options{Addr: cfg.RedisAddr}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	gw := gateway.NewClient(cfg.GatewayBaseURL, gateway.Options{
		Timeout:   cfg.GatewayTimeout,
		RateLimit: cfg.GatewayRateLimit,
		Burst:     cfg.GatewayBurst,
		Logger:    logger,
		Metrics:   gateway.NewMetrics(prometheus.DefaultRegisterer),
	})
	lookupService := lookups.NewService(gw, lookups.NewCache(redisClient, cfg.LookupCacheTTL), lookups.Endpoints{}, logger)
	warmupJob := jobs.NewWarmupJob(lookupService, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts.QueueOpt(),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLookupsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskLookupsInvalidate, Handler: warmupJob.HandleInvalidate},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1), asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

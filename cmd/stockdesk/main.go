package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/stockdesk/cmd/stockdesk/cli"
	"github.com/odyssey-erp/stockdesk/internal/app"
	"github.com/odyssey-erp/stockdesk/internal/auth"
	"github.com/odyssey-erp/stockdesk/internal/console"
	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
	"github.com/odyssey-erp/stockdesk/internal/observability"
	"github.com/odyssey-erp/stockdesk/internal/platform/cache"
	"github.com/odyssey-erp/stockdesk/internal/shared"
	"github.com/odyssey-erp/stockdesk/internal/view"
	"github.com/odyssey-erp/stockdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "hash-password" {
		if err := cli.HashPassword(os.Stdin, os.Stdout); err != nil {
			slog.Default().Error("hash password", slog.Any("error", err))
			os.Exit(1)
		}
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

	if len(args) > 0 && args[0] == "jobs" {
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		defer func() { _ = jobsCLI.Close() }()
		if err := cli.RunJobs(ctx, jobsCLI, args[1:], os.Stdout); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(2)
		}
		return
	}
	if len(args) > 0 && args[0] != "serve" {
		logger.Error(cli.ErrUsage.Error())
		os.Exit(2)
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("serve", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisOpts := cache.Options{Addr: cfg.RedisAddr}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "stockdesk_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	gw := gateway.NewClient(cfg.GatewayBaseURL, gateway.Options{
		Timeout:   cfg.GatewayTimeout,
		RateLimit: cfg.GatewayRateLimit,
		Burst:     cfg.GatewayBurst,
		Logger:    logger,
		Metrics:   gateway.NewMetrics(metrics.Registerer()),
	})
	lookupService := lookups.NewService(gw, lookups.NewCache(redisClient, cfg.LookupCacheTTL), lookups.Endpoints{}, logger)

	workspaces := console.NewWorkspaces(cfg.WorkspaceIdleTTL)
	metrics.TrackWorkspaces(workspaces.Len)
	go workspaces.Run(ctx, time.Minute)

	authService := auth.NewService(cfg.AdminEmail, cfg.AdminPasswordHash)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, workspaces.Drop)

	inspector := asynq.NewInspector(redisOpts.QueueOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		Console: console.Deps{
			Gateway:    gw,
			Lookups:    lookupService,
			Workspaces: workspaces,
			Templates:  templates,
			CSRF:       csrfManager,
			Logger:     logger,
		},
		JobHandler: jobs.NewHandler(inspector, logger),
		Metrics:    metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("gateway", gw.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

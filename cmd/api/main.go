package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"grantpilot/internal/bootstrap"
	"grantpilot/internal/config"
	"grantpilot/internal/handler"
	"grantpilot/internal/httpserver"
	"grantpilot/internal/oracle"
	"grantpilot/internal/repository"
	"grantpilot/internal/service/calendar"
	"grantpilot/internal/service/dashboard"
	"grantpilot/internal/service/drafting"
	"grantpilot/internal/service/extraction"
	"grantpilot/internal/service/portability"
	"grantpilot/internal/service/seed"
	"grantpilot/pkg/logger"
	"grantpilot/pkg/mq"
	"grantpilot/pkg/otel"
	"grantpilot/pkg/outbox"
	"grantpilot/pkg/redis"
	"grantpilot/pkg/util"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting grantpilot api...",
		zap.String("env", cfg.Env),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
	)

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: "grantpilot-api",
		Environment: cfg.Env,
		Endpoint:    cfg.OTel.Endpoint,
		Enabled:     cfg.OTel.Enabled,
		SampleRatio: cfg.OTel.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	ctx := context.Background()

	st, pool, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	if pool != nil {
		defer pool.Close()
	}

	rdb := redis.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		if err := redis.Ping(ctx, rdb); err != nil {
			log.Warn("Redis unavailable, caching and locks degrade to no-ops", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(st, log)
	cache := dashboard.NewCache(rdb, cfg.Dashboard.CacheTTL, log)
	repos.OnDeadlineWrite(cache.Invalidate)

	llm, err := oracle.New(ctx, oracle.Config{
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.Model,
		Timeout: cfg.Oracle.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to init oracle", zap.Error(err))
	}

	h := httpserver.Handlers{
		Repos:     repos,
		Dashboard: handler.NewDashboardHandler(dashboard.NewService(repos, cache, log), log),
		Settings:  handler.NewSettingsHandler(repos.Settings, log),
		AI: handler.NewAIHandler(
			extraction.NewService(repos, llm, log),
			drafting.NewService(llm, log),
			log,
		),
		Data: handler.NewDataHandler(
			calendar.NewService(repos, log),
			portability.NewService(repos, log),
			seed.NewService(repos, util.NewDeduper(rdb, time.Minute, log), log),
			log,
		),
	}
	opts := httpserver.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Store:       st,
	}

	// outbox administration needs both the table and a broker
	if pool != nil && cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("RabbitMQ unavailable, outbox admin endpoints disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			outboxRepo := outbox.NewRepository(pool)
			h.Admin = handler.NewAdminHandler(outboxRepo, outbox.NewReplayService(outboxRepo, publisher, log), log)
			opts.Publisher = publisher
		}
	}

	router := httpserver.NewRouter(h, opts, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down grantpilot api gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
	log.Info("grantpilot api shutdown complete")
}

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/bootstrap"
	"grantpilot/internal/config"
	"grantpilot/internal/mqhandler"
	"grantpilot/internal/repository"
	"grantpilot/internal/service/reminder"
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

	log.Info("Starting grantpilot worker...",
		zap.String("env", cfg.Env),
		zap.String("mq_url", cfg.MQ.URL),
	)

	if cfg.Store.Driver != config.DriverPostgres {
		log.Fatal("Worker requires the postgres store driver", zap.String("store_driver", cfg.Store.Driver))
	}

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: "grantpilot-worker",
		Environment: cfg.Env,
		Endpoint:    cfg.OTel.Endpoint,
		Enabled:     cfg.OTel.Enabled,
		SampleRatio: cfg.OTel.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, pool, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer pool.Close()
	repos := repository.NewRepositories(st, log)

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	var retryCounter *util.RetryCounter
	if rdb != nil {
		defer rdb.Close()
		retryCounter = util.NewRetryCounter(rdb, time.Hour)
	}
	deduper := util.NewDeduper(rdb, 48*time.Hour, log)

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcher := outbox.NewDispatcher(outbox.NewRepository(pool), publisher, log).
		WithInterval(cfg.Worker.OutboxInterval).
		WithBatchSize(cfg.Worker.OutboxBatchSize).
		WithMaxRetries(cfg.Worker.OutboxMaxRetries)

	scanner := reminder.NewScanner(repos, publisher, deduper, log).
		WithInterval(cfg.Worker.ReminderInterval).
		WithWindow(cfg.Worker.ReminderWindowDays)

	log.Info("Init consumer",
		zap.String("queue", cfg.Worker.SweeperQueue),
		zap.String("routing_key", mqcontracts.EventGrantDeleted),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.Worker.SweeperQueue, mqcontracts.EventGrantDeleted, log)
	if err != nil {
		log.Fatal("Sweeper consumer init failed", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(mqhandler.NewGrantDeletedHandler(repos, retryCounter, log).Handle)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Start(gctx)
		return nil
	})
	g.Go(func() error {
		scanner.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := consumer.StartConsuming(gctx); err != nil {
			return err
		}
		if gctx.Err() == nil {
			return errors.New("sweeper consumer stopped: delivery channel closed")
		}
		return nil
	})

	log.Info("Worker running")
	if err := g.Wait(); err != nil {
		log.Error("Worker stopped with error", zap.Error(err))
	}
	log.Info("grantpilot worker shutdown complete")
}

package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/exchange-engine/internal/app/engine"
	"github.com/muhammadchandra19/exchange-engine/internal/config"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	eventpublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/event-publisher/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/metrics"
	commandreader "github.com/muhammadchandra19/exchange-engine/internal/usecase/command-reader"
	eventpublisher "github.com/muhammadchandra19/exchange-engine/internal/usecase/event-publisher"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/snapshot"
	pkgconfig "github.com/muhammadchandra19/exchange-engine/pkg/config"
	"github.com/muhammadchandra19/exchange-engine/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger(logger.WithLoggingLevel(cfg.App.LogLevel))
	if err != nil {
		panic(err)
	}

	log = l
}

func main() {
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	var reader commandv1.CommandReader
	switch cfg.CommandSource {
	case config.SourceRedis:
		reader = commandreader.NewRedisReader(rclient, cfg.CommandQueue, log)
	default:
		reader = commandreader.NewKafkaReader(cfg.Kafka, log)
	}

	var history eventpublisherv1.HistorySink = eventpublisher.NopHistory{}
	if cfg.History.Enabled {
		history = eventpublisher.NewHistoryWriter(cfg.History, log)
	}

	var store snapshotv1.Store
	switch cfg.Snapshot.Backend {
	case config.BackendFile:
		store = snapshot.NewFileStore(cfg.Snapshot.Path, log)
	default:
		store = snapshot.NewSnapshotStore(rclient, cfg.Snapshot.Key, log)
	}

	m := metrics.New()
	engine, err := app.NewEngineWithOptions(
		reader,
		store,
		eventpublisher.NewPublisher(rclient, log),
		history,
		m,
		log,
		cfg,
		app.OptionsFromConfig(cfg.Engine),
	)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "create_engine",
		})
		return
	}

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	hc := healthcheck.HealthCheck{
		Checks: map[string]healthcheck.Checker{
			"redis":  rclient.Ping,
			"engine": engine.Healthy,
		},
		Timeout: 2 * time.Second,
	}
	server := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           hc.Handler(m.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "serve_metrics",
			})
		}
	}()

	log.Info("Matching engine started successfully",
		logger.Field{Key: "markets", Value: engine.Markets()},
		logger.Field{Key: "source", Value: cfg.CommandSource},
		logger.Field{Key: "metricsAddr", Value: cfg.MetricsAddr},
	)

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_metrics_server",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tripseats/config"
	"github.com/Domenick1991/tripseats/internal/audit"
	"github.com/Domenick1991/tripseats/internal/kafka"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})).
		With("component", "worker")

	if !cfg.Kafka.Enabled() {
		logger.Error("kafka brokers and operations topic are required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OperationsTopic, logger)
	defer consumer.Close()

	sink := audit.NewSink(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeOperations(ctx, sink.Record)
	})
	g.Go(func() error {
		heartbeat := time.NewTicker(time.Duration(cfg.Worker.HeartbeatSeconds) * time.Second)
		defer heartbeat.Stop()
		for {
			select {
			case <-heartbeat.C:
				logger.Debug("worker alive", "topic", cfg.Kafka.OperationsTopic)
			case <-ctx.Done():
				return nil
			}
		}
	})

	logger.Info("worker started", "topic", cfg.Kafka.OperationsTopic, "group", cfg.Kafka.GroupID)
	if err := g.Wait(); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"tempo/internal/amqp"
	"tempo/internal/cli"
	"tempo/internal/mirror"
	"tempo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tempo-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := mirror.NewFactory(logger)
	docMirror, err := factory.CreateMirror(ctx, mirror.Config{
		Type:        mirror.Backend(cfg.MirrorBackend),
		SnapshotDir: cfg.SnapshotDir,
	})
	if err != nil {
		logger.Error("Failed to initialize mirror", "error", err, "backend", cfg.MirrorBackend)
		os.Exit(1)
	}

	// The broker may come up after the worker; keep dialing.
	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(repo, docMirror)

	// Mirror once at startup to recover from events missed while down.
	if err := mirrorWorker.StartupMirror(ctx); err != nil {
		logger.Error("Startup mirror failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeStateSaved(gctx, func(msg *amqp.StateSavedMessage) error {
			mctx, cancel := context.WithTimeout(gctx, cfg.MirrorTimeout)
			defer cancel()
			return mirrorWorker.HandleStateSaved(mctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}

package main

import (
	"context"
	"os"
	"time"

	"matumizi/internal/backend"
	"matumizi/internal/cli"
	"matumizi/internal/log"
	"matumizi/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)

	logger.Info("Starting matumizi-worker", "reconcile_interval", cfg.ReconcileInterval.String())

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	svc, err := backend.NewFactory(logger).Create(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer svc.Close()

	var events worker.EventSource
	if svc.Events != nil {
		events = svc.Events
	} else {
		logger.Warn("AMQP not available, skipping event consumption")
	}
	w := worker.NewReconcileWorker(svc.Reconciler, events, cfg.ReconcileInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		svc.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	stats := w.Stats()
	logger.Info("Worker shutdown complete",
		"events_handled", stats.EventsHandled,
		"full_runs", stats.FullRuns,
		"drifts_found", stats.DriftsFound)
}

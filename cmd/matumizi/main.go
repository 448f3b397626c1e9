package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"matumizi/internal/backend"
	"matumizi/internal/cli"
	apphttp "matumizi/internal/http"
	"matumizi/internal/log"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

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

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger", log.FieldError, err)
		}
	})

	logger.Info("Starting matumizi server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", svc.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = svc.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

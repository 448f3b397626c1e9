package backend

import (
	"fmt"
	"time"

	"matumizi/internal/config"
	"matumizi/internal/services"
	"matumizi/internal/storage"
)

// Config holds everything needed to assemble the ledger services.
type Config struct {
	Store storage.Options
	Cache services.CacheOptions

	ExpenseListLimit int

	// AMQP is optional; an empty URL disables ledger events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	CacheCleanupInterval time.Duration
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	return Config{
		Store: storage.Options{
			Path:        appConfig.SQLiteDBPath,
			BusyTimeout: appConfig.SQLiteBusyTimeout,
			Retry: storage.RetryPolicy{
				MaxAttempts: appConfig.RetryAttempts,
				BaseDelay:   appConfig.RetryBaseDelay,
			},
		},
		Cache: services.CacheOptions{
			Size: appConfig.CategoryCacheSize,
			TTL:  appConfig.CategoryCacheTTL,
		},
		ExpenseListLimit: appConfig.ExpenseListLimit,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		CacheCleanupInterval: appConfig.CategoryCacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.Store.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Store.Retry.MaxAttempts)
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}

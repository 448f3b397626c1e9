// Package backend assembles the store, the ledger services and the optional
// event publisher from configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"matumizi/internal/amqp"
	"matumizi/internal/cache"
	"matumizi/internal/log"
	"matumizi/internal/services"
	"matumizi/internal/storage"
)

// Services is the wired ledger. Close releases everything it owns.
type Services struct {
	Repo       *storage.SQLiteRepository
	Catalog    *services.CatalogService
	Wallets    *services.WalletService
	Ledger     *services.LedgerService
	Reconciler *services.Reconciler

	// Events is nil when AMQP is not configured or unreachable at startup.
	Events *amqp.Client

	caches *cache.Manager
}

// Factory creates the ledger services.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create opens the store, applying migrations, and wires the services on top.
// An unreachable broker is logged and the ledger runs without events.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}

	storeOpts := cfg.Store
	if storeOpts.Logger == nil {
		storeOpts.Logger = f.logger
	}
	repo, err := storage.NewSQLiteRepository(ctx, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
			client = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	var publisher services.EventPublisher
	if client != nil {
		publisher = client
	}

	exec := repo.Executor()
	s := &Services{
		Repo:       repo,
		Catalog:    services.NewCatalogService(exec, cfg.Cache, f.logger),
		Wallets:    services.NewWalletService(exec, f.logger),
		Ledger:     services.NewLedgerService(exec, publisher, cfg.ExpenseListLimit, f.logger),
		Reconciler: services.NewReconciler(exec, f.logger),
		Events:     client,
		caches:     cache.NewManager(f.logger),
	}
	s.Catalog.RegisterCaches(s.caches)
	if cfg.CacheCleanupInterval > 0 {
		s.caches.StartCleanup(cfg.CacheCleanupInterval)
	}

	f.logger.Info("Initialized ledger backend",
		"db_path", repo.Path(),
		"amqp_enabled", client != nil)
	return s, nil
}

// Close stops cache cleanup and closes the broker and the store.
func (s *Services) Close() error {
	s.caches.Stop()
	var errs []error
	if s.Events != nil {
		errs = append(errs, s.Events.Close())
	}
	errs = append(errs, s.Repo.Close())
	return errors.Join(errs...)
}

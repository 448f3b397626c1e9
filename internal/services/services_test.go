package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"matumizi/internal/amqp"
	"matumizi/internal/core"
	"matumizi/internal/log"
	"matumizi/internal/storage"

	"github.com/stretchr/testify/require"
)

const (
	mainWalletID  = int64(1)
	mpesaWalletID = int64(2)
	foodID        = int64(1)
	transportID   = int64(2)
)

type testEnv struct {
	repo    *storage.SQLiteRepository
	catalog *CatalogService
	wallets *WalletService
	ledger  *LedgerService
	recon   *Reconciler
	events  *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(context.Background(), storage.Options{
		Path:        filepath.Join(t.TempDir(), "ledger.db"),
		BusyTimeout: 5 * time.Second,
		Retry:       storage.RetryPolicy{MaxAttempts: 3, BaseDelay: 0},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	exec := repo.Executor()
	events := &recordingPublisher{}
	return &testEnv{
		repo:    repo,
		catalog: NewCatalogService(exec, DefaultCacheOptions(), log.Nop()),
		wallets: NewWalletService(exec, log.Nop()),
		ledger:  NewLedgerService(exec, events, 0, log.Nop()),
		recon:   NewReconciler(exec, log.Nop()),
		events:  events,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) published() []*amqp.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.LedgerEvent(nil), p.events...)
}

func expense(walletID int64, units int64) core.NewExpense {
	tod := core.TimeOfDay{Hour: 9, Minute: 30}
	return core.NewExpense{
		Date:       core.NewDate(2025, 1, 15),
		Time:       &tod,
		Amount:     core.FromUnits(units),
		WalletID:   walletID,
		CategoryID: foodID,
	}
}

func balanceOf(t *testing.T, env *testEnv, walletID int64) core.Money {
	t.Helper()
	w, err := env.wallets.GetWallet(context.Background(), walletID)
	require.NoError(t, err)
	return w.CurrentBalance
}

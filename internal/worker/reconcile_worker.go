// Package worker runs background balance reconciliation.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"matumizi/internal/amqp"
	"matumizi/internal/core"
	"matumizi/internal/log"
)

// Reconciler checks wallet balances against the ledger.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]core.BalanceDrift, error)
	ReconcileWallet(ctx context.Context, walletID int64) (*core.BalanceDrift, error)
}

// EventSource delivers ledger events until ctx is cancelled.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler amqp.Handler) error
}

// Stats counts what the worker has done since it started.
type Stats struct {
	EventsHandled int64
	FullRuns      int64
	DriftsFound   int64
}

// ReconcileWorker reconciles the wallet touched by each ledger event and runs
// a full reconciliation on a fixed interval.
type ReconcileWorker struct {
	reconciler Reconciler
	events     EventSource
	interval   time.Duration
	logger     *log.Logger

	handled  atomic.Int64
	fullRuns atomic.Int64
	drifts   atomic.Int64
}

// NewReconcileWorker creates a worker. events may be nil, in which case only
// the periodic reconciliation runs.
func NewReconcileWorker(reconciler Reconciler, events EventSource, interval time.Duration, logger *log.Logger) *ReconcileWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &ReconcileWorker{
		reconciler: reconciler,
		events:     events,
		interval:   interval,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent reconciles the event's wallet. Drift is reported, not
// retried; only store failures are returned so the event is requeued.
func (w *ReconcileWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldEventID, event.EventID,
		log.FieldEventType, string(event.Type),
		log.FieldWalletID, event.WalletID)

	drift, err := w.reconciler.ReconcileWallet(ctx, event.WalletID)
	if errors.Is(err, core.ErrNotFound) {
		// the wallet was deleted after the event was published
		w.logger.InfoContext(ctx, "Skipping event for deleted wallet",
			log.FieldEventID, event.EventID, log.FieldWalletID, event.WalletID)
		w.handled.Add(1)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reconcile wallet %d: %w", event.WalletID, err)
	}

	w.handled.Add(1)
	if drift != nil {
		w.drifts.Add(1)
	}
	return nil
}

// ReconcileAll runs one full reconciliation.
func (w *ReconcileWorker) ReconcileAll(ctx context.Context) error {
	drifts, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}
	w.fullRuns.Add(1)
	w.drifts.Add(int64(len(drifts)))
	if len(drifts) > 0 {
		w.logger.WarnContext(ctx, "Full reconciliation found drift", "drifted", len(drifts))
	} else {
		w.logger.InfoContext(ctx, "Full reconciliation completed, balances consistent")
	}
	return nil
}

// Run reconciles once at startup, then serves events and the ticker until ctx
// is cancelled. It returns nil on cancellation.
func (w *ReconcileWorker) Run(ctx context.Context) error {
	if err := w.ReconcileAll(ctx); err != nil && ctx.Err() == nil {
		// not fatal: the next tick retries
		w.logger.ErrorContext(ctx, "Startup reconciliation failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ReconcileAll(ctx); err != nil && ctx.Err() == nil {
					w.logger.ErrorContext(ctx, "Periodic reconciliation failed", log.FieldError, err)
				}
			}
		}
	})

	if w.events != nil {
		g.Go(func() error {
			err := w.events.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume ledger events: %w", err)
			}
			return nil
		})
	} else {
		w.logger.InfoContext(ctx, "No event source configured, running periodic reconciliation only")
	}

	return g.Wait()
}

func (w *ReconcileWorker) Stats() Stats {
	return Stats{
		EventsHandled: w.handled.Load(),
		FullRuns:      w.fullRuns.Load(),
		DriftsFound:   w.drifts.Load(),
	}
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matumizi/internal/core"
	"matumizi/internal/log"
	"matumizi/internal/storage"
)

// Reconciler compares each wallet's running balance with opening balance
// minus its recorded expenses. It only reports; balances are never rewritten.
type Reconciler struct {
	exec   *storage.Executor
	logger *log.Logger
}

func NewReconciler(exec *storage.Executor, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Nop()
	}
	return &Reconciler{exec: exec, logger: logger.WithComponent(log.ComponentReconcile)}
}

// Reconcile checks every wallet and returns those that drifted.
func (r *Reconciler) Reconcile(ctx context.Context) ([]core.BalanceDrift, error) {
	var drifts []core.BalanceDrift
	checked := 0
	err := r.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		rows, err := q.WalletLedgerTotals(ctx)
		if err != nil {
			return err
		}
		checked = len(rows)
		drifts = drifts[:0]
		for _, row := range rows {
			if d := row.Drift(); d.Delta().Cents != 0 {
				drifts = append(drifts, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile wallets: %w", err)
	}

	for _, d := range drifts {
		r.logDrift(ctx, d)
	}
	r.logger.DebugContext(ctx, "Wallets reconciled", "checked", checked, "drifted", len(drifts))
	return drifts, nil
}

// ReconcileWallet checks one wallet. It returns nil when the balance agrees
// with the ledger.
func (r *Reconciler) ReconcileWallet(ctx context.Context, walletID int64) (*core.BalanceDrift, error) {
	var drift *core.BalanceDrift
	err := r.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		row, err := q.WalletLedgerTotal(ctx, walletID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: wallet %d", core.ErrNotFound, walletID)
		}
		if err != nil {
			return err
		}
		drift = nil
		if d := row.Drift(); d.Delta().Cents != 0 {
			drift = &d
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile wallet %d: %w", walletID, err)
	}
	if drift != nil {
		r.logDrift(ctx, *drift)
	}
	return drift, nil
}

func (r *Reconciler) logDrift(ctx context.Context, d core.BalanceDrift) {
	fields := log.NewFields().
		WithWallet(d.WalletID, d.WalletName, d.Recorded.Cents).
		WithOperation(log.OpReconcile)
	fields["expected_cents"] = d.Expected.Cents
	fields["delta_cents"] = d.Delta().Cents
	fields["expense_count"] = d.ExpenseCount
	r.logger.ErrorContext(ctx, "Wallet balance drift detected", fields.ToSlice()...)
}

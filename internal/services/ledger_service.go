package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matumizi/internal/amqp"
	"matumizi/internal/core"
	"matumizi/internal/log"
	"matumizi/internal/storage"
)

// DefaultListLimit bounds ListExpenses when no configured limit applies.
const DefaultListLimit = 1000

// EventPublisher receives ledger events after commit. *amqp.Client
// implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService records and reverses expenses. Each movement and its wallet
// balance change commit in one transaction.
type LedgerService struct {
	exec      *storage.Executor
	publisher EventPublisher
	listLimit int
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewLedgerService wires the ledger. publisher may be nil; listLimit <= 0
// selects DefaultListLimit.
func NewLedgerService(exec *storage.Executor, publisher EventPublisher, listLimit int, logger *log.Logger) *LedgerService {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		exec:      exec,
		publisher: publisher,
		listLimit: listLimit,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// RecordExpense debits the wallet and stores the expense.
func (s *LedgerService) RecordExpense(ctx context.Context, in core.NewExpense) (core.Receipt, error) {
	in.Description = core.SanitizeOptional(in.Description)
	if err := in.Validate(); err != nil {
		return core.Receipt{}, err
	}

	fields := log.NewFields().WithExpense(0, in.WalletID, in.Amount.Cents)

	// Fast rejection outside the write lock; repeated inside the transaction.
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		w, err := getWallet(ctx, q, in.WalletID)
		if err != nil {
			return err
		}
		return checkDebit(w, in.Amount)
	})
	if err != nil {
		s.events.LogOperationError(ctx, "Expense rejected", err, log.ComponentLedger, log.OpRecord, fields)
		return core.Receipt{}, fmt.Errorf("record expense: %w", err)
	}

	var receipt core.Receipt
	err = s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		w, err := getWallet(ctx, q, in.WalletID)
		if err != nil {
			return err
		}
		if err := checkDebit(w, in.Amount); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, in.CategoryID, in.SubcategoryID); err != nil {
			return err
		}

		row, err := q.CreateExpense(ctx, storage.CreateExpenseParamsFrom(in))
		if err != nil {
			return err
		}
		n, err := q.DebitWallet(ctx, in.WalletID, in.Amount.Cents)
		if err != nil {
			return err
		}
		if n == 0 {
			return diagnoseDebit(ctx, q, in.WalletID, in.Amount)
		}

		expense, err := row.ToCore()
		if err != nil {
			return err
		}
		after, err := q.GetWallet(ctx, in.WalletID)
		if err != nil {
			return err
		}
		active, err := q.ListActiveWallets(ctx)
		if err != nil {
			return err
		}
		receipt = core.Receipt{
			Expense:       expense,
			WalletName:    after.Name,
			NewBalance:    core.Money{Cents: after.CurrentBalanceCents},
			ActiveWallets: storage.WalletsToCore(active),
		}
		return nil
	})
	if err != nil {
		s.events.LogOperationError(ctx, "Expense not recorded", err, log.ComponentLedger, log.OpRecord, fields)
		return core.Receipt{}, fmt.Errorf("record expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense recorded",
		log.NewFields().
			WithExpense(receipt.Expense.ID, in.WalletID, in.Amount.Cents).
			WithWallet(in.WalletID, receipt.WalletName, receipt.NewBalance.Cents).
			WithOperation(log.OpRecord).ToSlice()...)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseRecorded,
		receipt.Expense.ID, in.WalletID, in.Amount.Cents, receipt.NewBalance.Cents))
	return receipt, nil
}

// DeleteExpense removes an expense and credits its amount back. Reversal is
// allowed on archived wallets.
func (s *LedgerService) DeleteExpense(ctx context.Context, expenseID int64) (core.Reversal, error) {
	if expenseID <= 0 {
		return core.Reversal{}, fmt.Errorf("%w: expense id is required", core.ErrValidation)
	}
	fields := log.NewFields().WithOperation(log.OpReverse)
	fields[log.FieldExpenseID] = expenseID

	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		_, err := getExpense(ctx, q, expenseID)
		return err
	})
	if err != nil {
		s.events.LogOperationError(ctx, "Expense reversal rejected", err, log.ComponentLedger, log.OpReverse, fields)
		return core.Reversal{}, fmt.Errorf("delete expense %d: %w", expenseID, err)
	}

	var reversal core.Reversal
	err = s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		row, err := getExpense(ctx, q, expenseID)
		if err != nil {
			return err
		}
		expense, err := row.ToCore()
		if err != nil {
			return err
		}
		if err := deleteExpenseRow(ctx, q, expenseID); err != nil {
			return err
		}
		n, err := q.CreditWallet(ctx, row.WalletID, row.AmountCents)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: wallet %d of expense %d is missing", core.ErrStore, row.WalletID, expenseID)
		}
		after, err := q.GetWallet(ctx, row.WalletID)
		if err != nil {
			return err
		}
		active, err := q.ListActiveWallets(ctx)
		if err != nil {
			return err
		}
		reversal = core.Reversal{
			Expense:       expense,
			WalletName:    after.Name,
			NewBalance:    core.Money{Cents: after.CurrentBalanceCents},
			ActiveWallets: storage.WalletsToCore(active),
		}
		return nil
	})
	if err != nil {
		s.events.LogOperationError(ctx, "Expense not reversed", err, log.ComponentLedger, log.OpReverse, fields)
		return core.Reversal{}, fmt.Errorf("delete expense %d: %w", expenseID, err)
	}

	e := reversal.Expense
	s.logger.InfoContext(ctx, "Expense reversed",
		log.NewFields().
			WithExpense(e.ID, e.WalletID, e.Amount.Cents).
			WithWallet(e.WalletID, reversal.WalletName, reversal.NewBalance.Cents).
			WithOperation(log.OpReverse).ToSlice()...)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseReversed,
		e.ID, e.WalletID, e.Amount.Cents, reversal.NewBalance.Cents))
	return reversal, nil
}

// ListExpenses returns the most recent entries, newest first. limit is
// clamped to the configured bound.
func (s *LedgerService) ListExpenses(ctx context.Context, limit int) ([]core.LedgerEntry, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}

	var entries []core.LedgerEntry
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		rows, err := q.ListLedgerEntries(ctx, int64(limit))
		if err != nil {
			return err
		}
		entries = make([]core.LedgerEntry, 0, len(rows))
		for _, r := range rows {
			e, err := r.ToCore()
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return entries, nil
}

// FilterExpenses narrows the listed entries by date range and categories.
func (s *LedgerService) FilterExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.LedgerEntry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.ListExpenses(ctx, s.listLimit)
	if err != nil {
		return nil, err
	}
	return f.Apply(entries), nil
}

// SpendingByCategory totals the filtered entries per category.
func (s *LedgerService) SpendingByCategory(ctx context.Context, f core.ExpenseFilter) ([]core.CategoryAmount, error) {
	entries, err := s.FilterExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByCategory(entries), nil
}

// MonthlySpending totals the filtered entries per calendar month.
func (s *LedgerService) MonthlySpending(ctx context.Context, f core.ExpenseFilter) ([]core.MonthTotal, error) {
	entries, err := s.FilterExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByMonth(entries), nil
}

// publish is best effort: the ledger has already committed.
func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, event.EventID,
			log.FieldEventType, string(event.Type),
			log.FieldExpenseID, event.ExpenseID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}

func checkDebit(w storage.Wallet, amount core.Money) error {
	if w.IsArchived {
		return fmt.Errorf("%w: %q", core.ErrWalletArchived, w.Name)
	}
	if w.CurrentBalanceCents < amount.Cents {
		return fmt.Errorf("%w: %q has %s, needs %s", core.ErrInsufficientBalance,
			w.Name, core.Money{Cents: w.CurrentBalanceCents}, amount)
	}
	return nil
}

func checkReferences(ctx context.Context, q *storage.Queries, categoryID int64, subcategoryID *int64) error {
	if _, err := q.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: category %d does not exist", core.ErrInvalidReference, categoryID)
		}
		return err
	}
	if subcategoryID == nil {
		return nil
	}
	sub, err := q.GetSubcategory(ctx, *subcategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: subcategory %d does not exist", core.ErrInvalidReference, *subcategoryID)
	}
	if err != nil {
		return err
	}
	if sub.CategoryID != categoryID {
		return fmt.Errorf("%w: subcategory %d does not belong to category %d",
			core.ErrInvalidReference, *subcategoryID, categoryID)
	}
	return nil
}

// diagnoseDebit explains a conditional debit that matched no row.
func diagnoseDebit(ctx context.Context, q *storage.Queries, walletID int64, amount core.Money) error {
	w, err := getWallet(ctx, q, walletID)
	if err != nil {
		return err
	}
	if err := checkDebit(w, amount); err != nil {
		return err
	}
	return fmt.Errorf("%w: debit of wallet %d matched no row", core.ErrStore, walletID)
}

// deleteExpenseRow removes one expense and reports NotFound when no row
// matched.
func deleteExpenseRow(ctx context.Context, q *storage.Queries, expenseID int64) error {
	n, err := q.DeleteExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: expense %d", core.ErrNotFound, expenseID)
	}
	return nil
}

func getExpense(ctx context.Context, q *storage.Queries, expenseID int64) (storage.Expense, error) {
	e, err := q.GetExpense(ctx, expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("%w: expense %d", core.ErrNotFound, expenseID)
	}
	return e, err
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"matumizi/internal/core"
	"matumizi/internal/log"
)

// TxFunc is one unit of work. It may run several times and must not keep
// side effects outside the transaction.
type TxFunc func(ctx context.Context, q *Queries) error

// RetryPolicy bounds retries of transient store failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy makes three attempts with 100ms and 200ms pauses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
}

// Backoff returns the pause after the given zero-based failed attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay << attempt
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Executor is the only path to the database. Every call runs in its own
// transaction and holds a connection only for the duration of one attempt.
type Executor struct {
	writer *sql.DB
	reader *sql.DB
	policy RetryPolicy
	logger *log.Logger
}

// NewExecutor wraps the handles. A nil reader reuses writer; a nil logger
// discards retry logs.
func NewExecutor(writer, reader *sql.DB, policy RetryPolicy, logger *log.Logger) *Executor {
	if reader == nil {
		reader = writer
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Executor{
		writer: writer,
		reader: reader,
		policy: policy,
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// Policy returns the retry policy in effect.
func (e *Executor) Policy() RetryPolicy {
	return e.policy
}

// Read runs fn on the reader pool.
func (e *Executor) Read(ctx context.Context, fn TxFunc) error {
	return e.Execute(ctx, true, fn)
}

// Write runs fn on the writer connection. The transaction starts IMMEDIATE so
// checks made inside fn still hold at commit.
func (e *Executor) Write(ctx context.Context, fn TxFunc) error {
	return e.Execute(ctx, false, fn)
}

// Execute runs fn in a transaction, retrying lock contention with
// exponential backoff. Errors returned by fn that carry a ledger error kind
// abort the transaction and are returned as is. Retry exhaustion yields
// core.ErrTransientStore; any other failure is translated once and returned.
func (e *Executor) Execute(ctx context.Context, readOnly bool, fn TxFunc) error {
	db := e.writer
	if readOnly {
		db = e.reader
	}

	attempts := e.policy.attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := e.policy.Backoff(attempt - 1)
			e.logger.WarnContext(ctx, "Retrying transaction after lock contention",
				log.FieldAttempt, attempt+1,
				"max_attempts", attempts,
				log.FieldDelayMs, delay.Milliseconds(),
				"read_only", readOnly,
				log.FieldError, lastErr)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := runTx(ctx, db, fn)
		if err == nil {
			return nil
		}
		if core.IsDomainError(err) || !IsTransient(err) {
			return Translate(err)
		}
		lastErr = err
	}

	e.logger.ErrorContext(ctx, "Transaction retries exhausted",
		"attempts", attempts,
		log.FieldErrorType, log.ErrorTypeDatabase,
		log.FieldError, lastErr)
	return fmt.Errorf("%w: after %d attempts: %w", core.ErrTransientStore, attempts, lastErr)
}

func runTx(ctx context.Context, db *sql.DB, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, New(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"matumizi/internal/core"
	"matumizi/internal/log"

	"github.com/stretchr/testify/require"
	sqlite3 "modernc.org/sqlite/lib"
)

type codeErr struct{ code int }

func (e codeErr) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e codeErr) Code() int     { return e.code }

func openTestRepo(t *testing.T, policy RetryPolicy) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), Options{
		Path:        filepath.Join(t.TempDir(), "ledger.db"),
		BusyTimeout: time.Second,
		Retry:       policy,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func zeroDelay(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: 0}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
	require.Equal(t, 100*time.Millisecond, p.Backoff(0))
	require.Equal(t, 200*time.Millisecond, p.Backoff(1))
	require.Equal(t, 400*time.Millisecond, p.Backoff(2))
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(codeErr{sqlite3.SQLITE_BUSY}))
	require.True(t, IsTransient(codeErr{sqlite3.SQLITE_LOCKED}))
	require.True(t, IsTransient(fmt.Errorf("begin: %w", codeErr{sqlite3.SQLITE_BUSY_SNAPSHOT})))
	require.True(t, IsTransient(errors.New("database is locked (5) (SQLITE_BUSY)")))
	require.False(t, IsTransient(codeErr{sqlite3.SQLITE_CONSTRAINT_UNIQUE}))
	require.False(t, IsTransient(errors.New("no such table: wallets")))
	require.False(t, IsTransient(nil))
}

func TestTranslate(t *testing.T) {
	require.ErrorIs(t, Translate(codeErr{sqlite3.SQLITE_CONSTRAINT_UNIQUE}), core.ErrDuplicateName)
	require.ErrorIs(t, Translate(codeErr{sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY}), core.ErrInvalidReference)
	require.ErrorIs(t, Translate(codeErr{sqlite3.SQLITE_IOERR}), core.ErrStore)
	require.ErrorIs(t, Translate(errors.New("UNIQUE constraint failed: categories.name")), core.ErrDuplicateName)
	require.ErrorIs(t, Translate(errors.New("disk I/O error")), core.ErrStore)
	require.ErrorIs(t, Translate(core.ErrWalletArchived), core.ErrWalletArchived)
	require.NotErrorIs(t, Translate(core.ErrWalletArchived), core.ErrStore)
	require.ErrorIs(t, Translate(context.Canceled), context.Canceled)
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	repo := openTestRepo(t, zeroDelay(3))

	calls := 0
	err := repo.Executor().Write(context.Background(), func(ctx context.Context, q *Queries) error {
		calls++
		if calls < 3 {
			return codeErr{sqlite3.SQLITE_BUSY}
		}
		_, err := q.CreateCategory(ctx, "Rent")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	var names []string
	require.NoError(t, repo.Executor().Read(context.Background(), func(ctx context.Context, q *Queries) error {
		cats, err := q.ListCategories(ctx)
		for _, c := range cats {
			names = append(names, c.Name)
		}
		return err
	}))
	require.Contains(t, names, "Rent")
}

func TestExecuteLogsRetriesWithLedgerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Level:   slog.LevelWarn,
		Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})
	repo, err := NewSQLiteRepository(context.Background(), Options{
		Path:        filepath.Join(t.TempDir(), "ledger.db"),
		BusyTimeout: time.Second,
		Retry:       zeroDelay(2),
		Logger:      logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.Executor().Write(context.Background(), func(ctx context.Context, q *Queries) error {
		return codeErr{sqlite3.SQLITE_BUSY}
	})
	require.ErrorIs(t, err, core.ErrTransientStore)

	out := buf.String()
	require.Contains(t, out, "Retrying transaction after lock contention")
	require.Contains(t, out, log.FieldComponent+"="+log.ComponentStorage)
	require.Contains(t, out, log.FieldAttempt+"=2")
	require.Contains(t, out, log.FieldDelayMs+"=0")
	require.Contains(t, out, "Transaction retries exhausted")
	require.Contains(t, out, log.FieldErrorType+"="+log.ErrorTypeDatabase)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	repo := openTestRepo(t, zeroDelay(3))

	calls := 0
	err := repo.Executor().Write(context.Background(), func(ctx context.Context, q *Queries) error {
		calls++
		return codeErr{sqlite3.SQLITE_LOCKED}
	})
	require.ErrorIs(t, err, core.ErrTransientStore)
	require.Equal(t, 3, calls)
}

func TestExecuteDoesNotRetryOtherErrors(t *testing.T) {
	repo := openTestRepo(t, zeroDelay(3))

	calls := 0
	err := repo.Executor().Write(context.Background(), func(ctx context.Context, q *Queries) error {
		calls++
		_, err := q.CreateCategory(ctx, "Food")
		return err
	})
	require.ErrorIs(t, err, core.ErrDuplicateName)
	require.Equal(t, 1, calls)

	calls = 0
	err = repo.Executor().Write(context.Background(), func(ctx context.Context, q *Queries) error {
		calls++
		return core.ErrInsufficientBalance
	})
	require.ErrorIs(t, err, core.ErrInsufficientBalance)
	require.Equal(t, 1, calls)
}

func TestExecuteRollsBackOnError(t *testing.T) {
	repo := openTestRepo(t, zeroDelay(1))
	ctx := context.Background()

	err := repo.Executor().Write(ctx, func(ctx context.Context, q *Queries) error {
		if _, err := q.CreateCategory(ctx, "Travel"); err != nil {
			return err
		}
		return core.ErrInvalidReference
	})
	require.ErrorIs(t, err, core.ErrInvalidReference)

	require.NoError(t, repo.Executor().Read(ctx, func(ctx context.Context, q *Queries) error {
		cats, err := q.ListCategories(ctx)
		require.NoError(t, err)
		for _, c := range cats {
			require.NotEqual(t, "Travel", c.Name)
		}
		return nil
	}))
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	repo := openTestRepo(t, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := repo.Executor().Write(ctx, func(ctx context.Context, q *Queries) error {
		calls++
		cancel()
		return codeErr{sqlite3.SQLITE_BUSY}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

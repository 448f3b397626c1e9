package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"matumizi/internal/log"
)

const driverName = "sqlite"

// Options configures the SQLite store.
type Options struct {
	Path        string
	BusyTimeout time.Duration
	Retry       RetryPolicy
	// MaxReaders caps the reader pool; zero leaves it unbounded.
	MaxReaders int
	// Logger receives store and retry logs; nil discards them.
	Logger *log.Logger
}

// SQLiteRepository owns the database handles. Writes go through a single
// connection whose transactions begin IMMEDIATE; reads use a separate pool.
type SQLiteRepository struct {
	path     string
	writer   *sql.DB
	reader   *sql.DB
	executor *Executor
}

// DSN builds a modernc.org/sqlite data source name with the pragmas every
// connection needs.
func DSN(path string, busyTimeout time.Duration, immediate bool) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	if immediate {
		q.Set("_txlock", "immediate")
	}
	return path + "?" + q.Encode()
}

// NewSQLiteRepository opens the store at opts.Path, creating the directory
// and applying migrations. A migration failure is returned and must be
// treated as fatal.
func NewSQLiteRepository(ctx context.Context, opts Options) (*SQLiteRepository, error) {
	if opts.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	logger := opts.Logger.WithComponent(log.ComponentStorage)

	writerDSN := DSN(opts.Path, opts.BusyTimeout, true)
	if err := RunMigrations(writerDSN, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	writer, err := sql.Open(driverName, writerDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open(driverName, DSN(opts.Path, opts.BusyTimeout, false))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open sqlite reader: %w", err)
	}
	if opts.MaxReaders > 0 {
		reader.SetMaxOpenConns(opts.MaxReaders)
	}

	repo := &SQLiteRepository{
		path:     opts.Path,
		writer:   writer,
		reader:   reader,
		executor: NewExecutor(writer, reader, opts.Retry, logger),
	}
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "SQLite store ready",
		"path", opts.Path,
		"max_attempts", opts.Retry.MaxAttempts,
		"base_delay_ms", opts.Retry.BaseDelay.Milliseconds())
	return repo, nil
}

func (r *SQLiteRepository) Executor() *Executor {
	return r.executor
}

func (r *SQLiteRepository) Path() string {
	return r.path
}

// Ping checks both handles.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	if err := r.reader.PingContext(ctx); err != nil {
		return fmt.Errorf("ping reader: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	var errs []error
	if r.reader != nil {
		errs = append(errs, r.reader.Close())
	}
	if r.writer != nil {
		errs = append(errs, r.writer.Close())
	}
	return errors.Join(errs...)
}

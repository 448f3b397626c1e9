package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"matumizi/internal/core"

	sqlite3 "modernc.org/sqlite/lib"
)

// coder is implemented by *sqlite.Error.
type coder interface {
	Code() int
}

func sqliteCode(err error) (int, bool) {
	var c coder
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return 0, false
}

// IsTransient reports lock contention that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// Translate maps a raw driver error onto the ledger error kinds. Errors that
// already carry a kind, and context errors, are returned unchanged.
func Translate(err error) error {
	if err == nil || core.IsDomainError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	}

	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", core.ErrDuplicateName, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", core.ErrInvalidReference, err)
		}
		return fmt.Errorf("%w: %w", core.ErrStore, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", core.ErrDuplicateName, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", core.ErrInvalidReference, err)
	}
	return fmt.Errorf("%w: %w", core.ErrStore, err)
}

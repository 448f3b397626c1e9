package log

import (
	"context"
	"errors"

	"matumizi/internal/core"
)

// ErrorType classifies err for the error_type log field.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidReference):
		return ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, core.ErrWalletArchived),
		errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrInvariantViolation):
		return ErrorTypeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, core.ErrTransientStore), errors.Is(err, core.ErrStore):
		return ErrorTypeDatabase
	default:
		return ErrorTypeInternal
	}
}

// Rejected reports errors caused by the caller's request rather than by
// infrastructure. They are logged at WARN instead of ERROR.
func Rejected(err error) bool {
	switch ErrorType(err) {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict:
		return true
	}
	return false
}

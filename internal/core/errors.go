package core

import (
	"errors"
	"fmt"
)

// Error kinds returned by the ledger. Callers match them with errors.Is;
// specific errors below wrap exactly one kind.
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrNotFound            = errors.New("not found")
	ErrInvalidReference    = errors.New("invalid reference")
	ErrWalletArchived      = errors.New("wallet archived")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvariantViolation  = errors.New("invariant violation")
	ErrTransientStore      = errors.New("transient store error")
	ErrStore               = errors.New("store error")
)

var (
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrNegativeBalance    = fmt.Errorf("%w: opening balance cannot be negative", ErrValidation)
	ErrMissingDate        = fmt.Errorf("%w: date is required", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrMissingTime        = fmt.Errorf("%w: time is required", ErrValidation)
	ErrInvalidTime        = fmt.Errorf("%w: invalid time", ErrValidation)
	ErrMissingWallet      = fmt.Errorf("%w: wallet is required", ErrValidation)
	ErrMissingCategory    = fmt.Errorf("%w: category is required", ErrValidation)
	ErrInvalidSubcategory = fmt.Errorf("%w: invalid subcategory", ErrValidation)
	ErrInvalidWalletType  = fmt.Errorf("%w: wallet type must be Cash, Mpesa or Bank", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name is empty after sanitization", ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: name too long (max 100 characters)", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrInvalidDateRange   = fmt.Errorf("%w: start date is after end date", ErrValidation)

	ErrLastActiveWallet     = fmt.Errorf("%w: at least one active wallet required", ErrInvariantViolation)
	ErrDeleteArchivedWallet = fmt.Errorf("%w: wallet is archived", ErrInvariantViolation)
	ErrWalletHasExpenses    = fmt.Errorf("%w: wallet has expenses", ErrInvariantViolation)
)

// IsDomainError reports whether err belongs to the ledger taxonomy rather than
// being a raw driver or I/O failure.
func IsDomainError(err error) bool {
	for _, kind := range []error{
		ErrValidation,
		ErrDuplicateName,
		ErrNotFound,
		ErrInvalidReference,
		ErrWalletArchived,
		ErrInsufficientBalance,
		ErrInvariantViolation,
		ErrTransientStore,
		ErrStore,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Cash  WalletType = "Cash"
	Mpesa WalletType = "Mpesa"
	Bank  WalletType = "Bank"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	maxNameLength        = 100
	maxDescriptionLength = 200
)

type (
	WalletType string

	Date struct {
		time.Time
	}

	// TimeOfDay is the wall-clock time an expense happened, minute precision.
	TimeOfDay struct {
		Hour   int
		Minute int
	}

	Category struct {
		ID   int64
		Name string
	}

	Subcategory struct {
		ID         int64
		Name       string
		CategoryID int64
	}

	Wallet struct {
		ID             int64
		Type           WalletType
		Name           string
		OpeningBalance Money
		CurrentBalance Money
		MpesaNumber    *string
		IsArchived     bool
	}

	Expense struct {
		ID            int64
		Date          Date
		Time          TimeOfDay
		Amount        Money
		WalletID      int64
		CategoryID    int64
		SubcategoryID *int64
		Description   *string
	}

	// NewExpense is the input of a ledger record operation.
	NewExpense struct {
		Date          Date
		Time          *TimeOfDay
		Amount        Money
		WalletID      int64
		CategoryID    int64
		SubcategoryID *int64
		Description   *string
	}

	// NewWallet is the input of a wallet creation.
	NewWallet struct {
		Name           string
		Type           WalletType
		OpeningBalance Money
		MpesaNumber    *string
	}
)

var WalletTypes = []WalletType{Cash, Mpesa, Bank}

func (t WalletType) IsValid() bool {
	switch t {
	case Cash, Mpesa, Bank:
		return true
	default:
		return false
	}
}

func (t WalletType) String() string {
	return string(t)
}

// ParseWalletType accepts the type name case-insensitively.
func ParseWalletType(s string) (WalletType, error) {
	for _, t := range WalletTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWalletType, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD, the stored representation.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, t.Hour, t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses an HH:MM time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// Sanitize trims the input and drops every character that is not a letter,
// digit, underscore, whitespace or hyphen.
func Sanitize(s string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(strings.TrimSpace(s), ""))
}

// SanitizeOptional sanitizes an optional value; an empty result becomes nil.
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Sanitize(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// ValidateName sanitizes a catalog or wallet name and rejects empty results.
func ValidateName(name string) (string, error) {
	clean := Sanitize(name)
	if clean == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(clean) > maxNameLength {
		return "", ErrNameTooLong
	}
	return clean, nil
}

func (w NewWallet) Validate() error {
	if _, err := ValidateName(w.Name); err != nil {
		return err
	}
	if !w.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWalletType, w.Type)
	}
	if w.OpeningBalance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}

func (e NewExpense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Time == nil {
		return ErrMissingTime
	}
	if err := e.Time.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.WalletID <= 0 {
		return ErrMissingWallet
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if e.SubcategoryID != nil && *e.SubcategoryID <= 0 {
		return ErrInvalidSubcategory
	}
	if e.Description != nil && utf8.RuneCountInString(*e.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// Deletable reports whether the wallet may be hard-deleted given its usage.
func (w Wallet) Deletable(unused bool) bool {
	return !w.IsArchived && unused
}

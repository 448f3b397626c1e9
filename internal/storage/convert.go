package storage

import (
	"database/sql"
	"fmt"

	"matumizi/internal/core"
)

func (c Category) ToCore() core.Category {
	return core.Category{ID: c.ID, Name: c.Name}
}

func (s Subcategory) ToCore() core.Subcategory {
	return core.Subcategory{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID}
}

func (w Wallet) ToCore() core.Wallet {
	return core.Wallet{
		ID:             w.ID,
		Type:           core.WalletType(w.Type),
		Name:           w.Name,
		OpeningBalance: core.Money{Cents: w.OpeningBalanceCents},
		CurrentBalance: core.Money{Cents: w.CurrentBalanceCents},
		MpesaNumber:    fromNullString(w.MpesaNumber),
		IsArchived:     w.IsArchived,
	}
}

// ToCore fails only when a stored date or time is not in canonical form.
func (e Expense) ToCore() (core.Expense, error) {
	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: expense %d: %v", core.ErrStore, e.ID, err)
	}
	tod, err := core.ParseTimeOfDay(e.Time)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: expense %d: %v", core.ErrStore, e.ID, err)
	}
	return core.Expense{
		ID:            e.ID,
		Date:          date,
		Time:          tod,
		Amount:        core.Money{Cents: e.AmountCents},
		WalletID:      e.WalletID,
		CategoryID:    e.CategoryID,
		SubcategoryID: fromNullInt64(e.SubcategoryID),
		Description:   fromNullString(e.Description),
	}, nil
}

func (r LedgerEntryRow) ToCore() (core.LedgerEntry, error) {
	e, err := r.Expense.ToCore()
	if err != nil {
		return core.LedgerEntry{}, err
	}
	return core.LedgerEntry{
		Expense:         e,
		WalletName:      r.WalletName,
		CategoryName:    r.CategoryName,
		SubcategoryName: fromNullString(r.SubcategoryName),
	}, nil
}

func (r WalletUsageRow) ToCore() core.WalletRow {
	w := r.Wallet.ToCore()
	return core.WalletRow{Wallet: w, Unused: r.Unused, Deletable: w.Deletable(r.Unused)}
}

func (r WalletLedgerTotalsRow) Drift() core.BalanceDrift {
	expenses := core.Money{Cents: r.ExpensesCents}
	return core.BalanceDrift{
		WalletID:       r.ID,
		WalletName:     r.Name,
		Recorded:       core.Money{Cents: r.CurrentBalanceCents},
		Expected:       core.Money{Cents: r.OpeningBalanceCents}.Sub(expenses),
		ExpenseCount:   r.ExpenseCount,
		ExpensesAmount: expenses,
	}
}

// CreateExpenseParamsFrom maps a validated expense to insert parameters.
func CreateExpenseParamsFrom(e core.NewExpense) CreateExpenseParams {
	var tod core.TimeOfDay
	if e.Time != nil {
		tod = *e.Time
	}
	return CreateExpenseParams{
		Date:          e.Date.String(),
		Time:          tod.String(),
		AmountCents:   e.Amount.Cents,
		WalletID:      e.WalletID,
		CategoryID:    e.CategoryID,
		SubcategoryID: toNullInt64(e.SubcategoryID),
		Description:   toNullString(e.Description),
	}
}

func WalletsToCore(rows []Wallet) []core.Wallet {
	out := make([]core.Wallet, len(rows))
	for i, w := range rows {
		out[i] = w.ToCore()
	}
	return out
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// NullString wraps an optional string for query parameters.
func NullString(s *string) sql.NullString {
	return toNullString(s)
}

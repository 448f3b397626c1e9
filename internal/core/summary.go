package core

import "sort"

// LedgerEntry is an expense joined with the display names of what it references.
type LedgerEntry struct {
	Expense
	WalletName      string
	CategoryName    string
	SubcategoryName *string
}

// ExpenseFilter narrows a list of ledger entries. Zero values match everything.
type ExpenseFilter struct {
	From        *Date
	To          *Date
	CategoryIDs []int64
}

func (f ExpenseFilter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(f.To.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Matches reports whether e falls inside the date range (inclusive) and the
// category set.
func (f ExpenseFilter) Matches(e LedgerEntry) bool {
	if f.From != nil && e.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && e.Date.After(f.To.Time) {
		return false
	}
	if len(f.CategoryIDs) == 0 {
		return true
	}
	for _, id := range f.CategoryIDs {
		if e.CategoryID == id {
			return true
		}
	}
	return false
}

// Apply returns the entries matching f, preserving order.
func (f ExpenseFilter) Apply(entries []LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthTotal is the spending of one calendar month.
type MonthTotal struct {
	Year  int
	Month int // 1-12
	Total Money
}

// SummarizeByCategory totals entries per category, largest first.
func SummarizeByCategory(entries []LedgerEntry) []CategoryAmount {
	totals := make(map[string]int64)
	for _, e := range entries {
		totals[e.CategoryName] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SummarizeByMonth totals entries per calendar month, oldest first.
func SummarizeByMonth(entries []LedgerEntry) []MonthTotal {
	type key struct{ year, month int }
	totals := make(map[key]int64)
	for _, e := range entries {
		totals[key{e.Date.Year(), int(e.Date.Month())}] += e.Amount.Cents
	}
	out := make([]MonthTotal, 0, len(totals))
	for k, cents := range totals {
		out = append(out, MonthTotal{Year: k.year, Month: k.month, Total: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"matumizi/internal/core"
	"matumizi/internal/log"
)

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type subcategoryJSON struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

type walletJSON struct {
	ID             int64      `json:"id"`
	Type           string     `json:"type"`
	Name           string     `json:"name"`
	OpeningBalance core.Money `json:"opening_balance"`
	CurrentBalance core.Money `json:"current_balance"`
	MpesaNumber    *string    `json:"mpesa_number,omitempty"`
	IsArchived     bool       `json:"is_archived"`
}

type walletRowJSON struct {
	walletJSON
	Unused    bool `json:"unused"`
	Deletable bool `json:"deletable"`
}

type projectionJSON struct {
	Active []walletJSON    `json:"active_wallets"`
	Table  []walletRowJSON `json:"wallet_table"`
}

type walletResultJSON struct {
	Wallet walletJSON `json:"wallet"`
	projectionJSON
}

type expenseJSON struct {
	ID            int64      `json:"id"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Amount        core.Money `json:"amount"`
	WalletID      int64      `json:"wallet_id"`
	CategoryID    int64      `json:"category_id"`
	SubcategoryID *int64     `json:"subcategory_id,omitempty"`
	Description   *string    `json:"description,omitempty"`
}

type ledgerEntryJSON struct {
	expenseJSON
	WalletName      string  `json:"wallet_name"`
	CategoryName    string  `json:"category_name"`
	SubcategoryName *string `json:"subcategory_name,omitempty"`
}

type movementJSON struct {
	Expense       expenseJSON  `json:"expense"`
	WalletName    string       `json:"wallet_name"`
	NewBalance    core.Money   `json:"new_balance"`
	ActiveWallets []walletJSON `json:"active_wallets"`
}

type categoryAmountJSON struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

type monthTotalJSON struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Total core.Money `json:"total"`
}

type driftJSON struct {
	WalletID     int64      `json:"wallet_id"`
	WalletName   string     `json:"wallet_name"`
	Recorded     core.Money `json:"recorded_balance"`
	Expected     core.Money `json:"expected_balance"`
	Delta        int64      `json:"delta_cents"`
	ExpenseCount int64      `json:"expense_count"`
}

type errorJSON struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func toCategoryJSON(cats []core.Category) []categoryJSON {
	out := make([]categoryJSON, len(cats))
	for i, c := range cats {
		out[i] = categoryJSON{ID: c.ID, Name: c.Name}
	}
	return out
}

func toSubcategoryJSON(subs []core.Subcategory) []subcategoryJSON {
	out := make([]subcategoryJSON, len(subs))
	for i, s := range subs {
		out[i] = subcategoryJSON{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID}
	}
	return out
}

func toWalletJSON(w core.Wallet) walletJSON {
	return walletJSON{
		ID:             w.ID,
		Type:           w.Type.String(),
		Name:           w.Name,
		OpeningBalance: w.OpeningBalance,
		CurrentBalance: w.CurrentBalance,
		MpesaNumber:    w.MpesaNumber,
		IsArchived:     w.IsArchived,
	}
}

func toWalletsJSON(ws []core.Wallet) []walletJSON {
	out := make([]walletJSON, len(ws))
	for i, w := range ws {
		out[i] = toWalletJSON(w)
	}
	return out
}

func toProjectionJSON(p core.WalletProjection) projectionJSON {
	table := make([]walletRowJSON, len(p.Table))
	for i, row := range p.Table {
		table[i] = walletRowJSON{walletJSON: toWalletJSON(row.Wallet), Unused: row.Unused, Deletable: row.Deletable}
	}
	return projectionJSON{Active: toWalletsJSON(p.Active), Table: table}
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:            e.ID,
		Date:          e.Date.String(),
		Time:          e.Time.String(),
		Amount:        e.Amount,
		WalletID:      e.WalletID,
		CategoryID:    e.CategoryID,
		SubcategoryID: e.SubcategoryID,
		Description:   e.Description,
	}
}

func toEntriesJSON(entries []core.LedgerEntry) []ledgerEntryJSON {
	out := make([]ledgerEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = ledgerEntryJSON{
			expenseJSON:     toExpenseJSON(e.Expense),
			WalletName:      e.WalletName,
			CategoryName:    e.CategoryName,
			SubcategoryName: e.SubcategoryName,
		}
	}
	return out
}

func toMovementJSON(e core.Expense, walletName string, balance core.Money, active []core.Wallet) movementJSON {
	return movementJSON{
		Expense:       toExpenseJSON(e),
		WalletName:    walletName,
		NewBalance:    balance,
		ActiveWallets: toWalletsJSON(active),
	}
}

func toDriftsJSON(drifts []core.BalanceDrift) []driftJSON {
	out := make([]driftJSON, len(drifts))
	for i, d := range drifts {
		out[i] = driftJSON{
			WalletID:     d.WalletID,
			WalletName:   d.WalletName,
			Recorded:     d.Recorded,
			Expected:     d.Expected,
			Delta:        d.Delta().Cents,
			ExpenseCount: d.ExpenseCount,
		}
	}
	return out
}

// statusFor maps the ledger error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, core.ErrWalletArchived),
		errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrInvariantViolation):
		return http.StatusConflict
	case errors.Is(err, core.ErrTransientStore), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs err and writes it as a JSON error body. Internal failures
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}

	fields := log.NewFields()
	fields[log.FieldStatusCode] = status
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogOperationError(r.Context(), "Request failed", err, log.ComponentHTTP, op, fields)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, errorJSON{Error: msg, Type: log.ErrorType(err)})
}

package http

import (
	"net/http"

	"matumizi/internal/log"
)

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpRecord, err)
		return
	}
	in, err := req.toNewExpense()
	if err != nil {
		writeError(w, r, log.OpRecord, err)
		return
	}
	receipt, err := s.svc.Ledger.RecordExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpRecord, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementJSON(receipt.Expense, receipt.WalletName,
		receipt.NewBalance, receipt.ActiveWallets))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.OpReverse, err)
		return
	}
	reversal, err := s.svc.Ledger.DeleteExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpReverse, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementJSON(reversal.Expense, reversal.WalletName,
		reversal.NewBalance, reversal.ActiveWallets))
}

// handleListExpenses returns the newest entries; with from, to or
// category_id it returns the filtered entries instead.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseLimit(query)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	filter, filtered, err := parseFilter(query)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}

	if !filtered {
		entries, err := s.svc.Ledger.ListExpenses(r.Context(), limit)
		if err != nil {
			writeError(w, r, log.OpList, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntriesJSON(entries))
		return
	}

	entries, err := s.svc.Ledger.FilterExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, toEntriesJSON(entries))
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	filter, _, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	totals, err := s.svc.Ledger.SpendingByCategory(r.Context(), filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]categoryAmountJSON, len(totals))
	for i, t := range totals {
		out[i] = categoryAmountJSON{Name: t.Name, Amount: t.Amount}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlySpending(w http.ResponseWriter, r *http.Request) {
	filter, _, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	totals, err := s.svc.Ledger.MonthlySpending(r.Context(), filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]monthTotalJSON, len(totals))
	for i, t := range totals {
		out[i] = monthTotalJSON{Year: t.Year, Month: t.Month, Total: t.Total}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	drifts, err := s.svc.Reconciler.Reconcile(r.Context())
	if err != nil {
		writeError(w, r, log.OpReconcile, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consistent": len(drifts) == 0,
		"drifts":     toDriftsJSON(drifts),
	})
}

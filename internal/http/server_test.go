package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"matumizi/internal/backend"
	"matumizi/internal/log"
	"matumizi/internal/storage"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, perMinute int) *Server {
	t.Helper()
	svc, err := backend.NewFactory(log.Nop()).Create(context.Background(), backend.Config{
		Store: storage.Options{
			Path:        filepath.Join(t.TempDir(), "ledger.db"),
			BusyTimeout: 5 * time.Second,
			Retry:       storage.RetryPolicy{MaxAttempts: 3},
		},
	})
	require.NoError(t, err)

	srv := NewServer(":0", svc, Options{RateLimitPerMinute: perMinute}, log.Nop())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		_ = svc.Close()
	})
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, 100)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	}
}

func TestExpenseRoundTripOverHTTP(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := do(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"date":        "2025-01-15",
		"time":        "09:30",
		"amount":      200,
		"wallet_id":   1,
		"category_id": 1,
		"description": "Groceries",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	receipt := decode[struct {
		Expense struct {
			ID int64 `json:"id"`
		} `json:"expense"`
		WalletName string  `json:"wallet_name"`
		NewBalance float64 `json:"new_balance"`
	}](t, rr)
	require.Equal(t, "Main Wallet", receipt.WalletName)
	require.Equal(t, 800.0, receipt.NewBalance)

	rr = do(t, srv, http.MethodGet, "/api/expenses", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[[]map[string]any](t, rr)
	require.Len(t, entries, 1)
	require.Equal(t, "Food", entries[0]["category_name"])
	require.Equal(t, "09:30", entries[0]["time"])

	rr = do(t, srv, http.MethodGet, "/api/summary/categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[{"name":"Food","amount":200.00}]`, rr.Body.String())

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+jsonID(receipt.Expense.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1000.0, decode[map[string]any](t, rr)["new_balance"])

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+jsonID(receipt.Expense.ID), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/reconcile", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, true, decode[map[string]any](t, rr)["consistent"])
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t, 100)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"duplicate category", http.MethodPost, "/api/categories", map[string]string{"name": "Food"}, http.StatusConflict},
		{"empty category", http.MethodPost, "/api/categories", map[string]string{"name": "!!!"}, http.StatusUnprocessableEntity},
		{"unknown parent", http.MethodPost, "/api/subcategories", map[string]any{"category_id": 99, "name": "Fuel"}, http.StatusUnprocessableEntity},
		{"overdraw", http.MethodPost, "/api/expenses", map[string]any{
			"date": "2025-01-15", "time": "10:00", "amount": 5000, "wallet_id": 2, "category_id": 1,
		}, http.StatusConflict},
		{"missing time", http.MethodPost, "/api/expenses", map[string]any{
			"date": "2025-01-15", "amount": 1, "wallet_id": 1, "category_id": 1,
		}, http.StatusUnprocessableEntity},
		{"unknown wallet", http.MethodGet, "/api/wallets/42", nil, http.StatusNotFound},
		{"bad wallet id", http.MethodGet, "/api/wallets/x", nil, http.StatusUnprocessableEntity},
		{"bad wallet type", http.MethodPost, "/api/wallets", map[string]any{"name": "Card", "type": "Visa"}, http.StatusUnprocessableEntity},
		{"bad date range", http.MethodGet, "/api/expenses?from=2025-02-01&to=2025-01-01", nil, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			require.Equal(t, tt.want, rr.Code, rr.Body.String())
			require.NotEmpty(t, decode[errorJSON](t, rr).Error)
		})
	}
}

func TestWalletLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := do(t, srv, http.MethodPost, "/api/wallets", map[string]any{
		"name": "Savings", "type": "bank", "opening_balance": "250.50",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Wallet struct {
			ID             int64   `json:"id"`
			CurrentBalance float64 `json:"current_balance"`
		} `json:"wallet"`
		Active []map[string]any `json:"active_wallets"`
		Table  []map[string]any `json:"wallet_table"`
	}](t, rr)
	require.Equal(t, 250.5, created.Wallet.CurrentBalance)
	require.Len(t, created.Active, 3)
	require.Len(t, created.Table, 3)

	id := jsonID(created.Wallet.ID)
	rr = do(t, srv, http.MethodPost, "/api/wallets/"+id+"/archive", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/wallets?active=true", nil)
	require.Len(t, decode[[]map[string]any](t, rr), 2)

	rr = do(t, srv, http.MethodDelete, "/api/wallets/"+id, nil)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/wallets/"+id+"/unarchive", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/wallets/"+id+"/unused", nil)
	require.Equal(t, true, decode[map[string]any](t, rr)["unused"])

	rr = do(t, srv, http.MethodDelete, "/api/wallets/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[projectionJSON](t, rr).Table, 2)

	rr = do(t, srv, http.MethodGet, "/api/wallets/table", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)

	for i, name := range []string{"Rent", "Health"} {
		rr := do(t, srv, http.MethodPost, "/api/categories", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rr.Code, "request %d", i)
	}
	rr := do(t, srv, http.MethodPost, "/api/categories", map[string]string{"name": "Travel"})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "60", rr.Header().Get("Retry-After"))

	// reads are not limited
	rr = do(t, srv, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[[]categoryJSON](t, rr), 7)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

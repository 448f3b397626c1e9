// Package http exposes the ledger as a JSON API.
//
// This file decodes request bodies and query strings into ledger inputs.
// Every parse failure wraps core.ErrValidation so it maps to 422.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"matumizi/internal/core"
)

const maxBodyBytes = 1 << 20

type categoryRequest struct {
	Name string `json:"name"`
}

type subcategoryRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

type walletRequest struct {
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	OpeningBalance core.Money `json:"opening_balance"`
	MpesaNumber    *string    `json:"mpesa_number"`
}

func (r walletRequest) toNewWallet() (core.NewWallet, error) {
	t, err := core.ParseWalletType(r.Type)
	if err != nil {
		return core.NewWallet{}, err
	}
	return core.NewWallet{
		Name:           r.Name,
		Type:           t,
		OpeningBalance: r.OpeningBalance,
		MpesaNumber:    r.MpesaNumber,
	}, nil
}

type expenseRequest struct {
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Amount        core.Money `json:"amount"`
	WalletID      int64      `json:"wallet_id"`
	CategoryID    int64      `json:"category_id"`
	SubcategoryID *int64     `json:"subcategory_id"`
	Description   *string    `json:"description"`
}

func (r expenseRequest) toNewExpense() (core.NewExpense, error) {
	if strings.TrimSpace(r.Date) == "" {
		return core.NewExpense{}, core.ErrMissingDate
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.NewExpense{}, err
	}
	if strings.TrimSpace(r.Time) == "" {
		return core.NewExpense{}, core.ErrMissingTime
	}
	tod, err := core.ParseTimeOfDay(r.Time)
	if err != nil {
		return core.NewExpense{}, err
	}
	return core.NewExpense{
		Date:          date,
		Time:          &tod,
		Amount:        r.Amount,
		WalletID:      r.WalletID,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		Description:   r.Description,
	}, nil
}

// decodeJSON reads exactly one JSON object into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// amount errors already carry the validation kind
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", core.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must hold a single JSON object", core.ErrValidation)
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, name, raw)
	}
	return id, nil
}

// parseOptionalID parses a positive integer query value; empty means nil.
func parseOptionalID(query url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, key, raw)
	}
	return &id, nil
}

// parseLimit returns 0 (use the configured bound) when limit is absent.
func parseLimit(query url.Values) (int, error) {
	raw := strings.TrimSpace(query.Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", core.ErrValidation, raw)
	}
	return n, nil
}

// parseFilter reads from, to and category_id (repeated or comma separated).
// The boolean reports whether any filter was given.
func parseFilter(query url.Values) (core.ExpenseFilter, bool, error) {
	var f core.ExpenseFilter
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return f, false, err
		}
		f.From = &d
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return f, false, err
		}
		f.To = &d
	}
	for _, value := range query["category_id"] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return f, false, fmt.Errorf("%w: invalid category_id %q", core.ErrValidation, part)
			}
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}
	if err := f.Validate(); err != nil {
		return f, false, err
	}
	return f, f.From != nil || f.To != nil || len(f.CategoryIDs) > 0, nil
}

// parseBool accepts the strconv forms; empty means false.
func parseBool(query url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, key, raw)
	}
	return b, nil
}

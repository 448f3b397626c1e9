package storage

import (
	"context"
	"database/sql"
)

const walletColumns = `id, type, name, opening_balance_cents, current_balance_cents, mpesa_number, is_archived`

const createWallet = `-- name: CreateWallet :one
INSERT INTO wallets (type, name, opening_balance_cents, current_balance_cents, mpesa_number, is_archived)
VALUES (?, ?, ?, ?, ?, 0)
RETURNING ` + walletColumns

type CreateWalletParams struct {
	Type                string
	Name                string
	OpeningBalanceCents int64
	MpesaNumber         sql.NullString
}

// CreateWallet starts the running balance at the opening balance.
func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) (Wallet, error) {
	row := q.db.QueryRowContext(ctx, createWallet,
		arg.Type,
		arg.Name,
		arg.OpeningBalanceCents,
		arg.OpeningBalanceCents,
		arg.MpesaNumber,
	)
	return scanWallet(row)
}

const getWallet = `-- name: GetWallet :one
SELECT ` + walletColumns + ` FROM wallets WHERE id = ?`

func (q *Queries) GetWallet(ctx context.Context, id int64) (Wallet, error) {
	return scanWallet(q.db.QueryRowContext(ctx, getWallet, id))
}

const listWallets = `-- name: ListWallets :many
SELECT ` + walletColumns + ` FROM wallets ORDER BY id`

func (q *Queries) ListWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := q.db.QueryContext(ctx, listWallets)
	if err != nil {
		return nil, err
	}
	return scanWallets(rows)
}

const listActiveWallets = `-- name: ListActiveWallets :many
SELECT ` + walletColumns + ` FROM wallets WHERE is_archived = 0 ORDER BY id`

func (q *Queries) ListActiveWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := q.db.QueryContext(ctx, listActiveWallets)
	if err != nil {
		return nil, err
	}
	return scanWallets(rows)
}

const countActiveWallets = `-- name: CountActiveWallets :one
SELECT COUNT(*) FROM wallets WHERE is_archived = 0
`

func (q *Queries) CountActiveWallets(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveWallets)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const setWalletArchived = `-- name: SetWalletArchived :execrows
UPDATE wallets SET is_archived = ? WHERE id = ?
`

func (q *Queries) SetWalletArchived(ctx context.Context, id int64, archived bool) (int64, error) {
	result, err := q.db.ExecContext(ctx, setWalletArchived, archived, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteWallet = `-- name: DeleteWallet :execrows
DELETE FROM wallets WHERE id = ?
`

func (q *Queries) DeleteWallet(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteWallet, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const walletHasExpenses = `-- name: WalletHasExpenses :one
SELECT EXISTS (SELECT 1 FROM expenses WHERE wallet_id = ?)
`

func (q *Queries) WalletHasExpenses(ctx context.Context, walletID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, walletHasExpenses, walletID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listWalletUsage = `-- name: ListWalletUsage :many
SELECT w.id, w.type, w.name, w.opening_balance_cents, w.current_balance_cents, w.mpesa_number, w.is_archived,
       NOT EXISTS (SELECT 1 FROM expenses e WHERE e.wallet_id = w.id) AS unused
FROM wallets w
ORDER BY w.id
`

type WalletUsageRow struct {
	Wallet
	Unused bool
}

func (q *Queries) ListWalletUsage(ctx context.Context) ([]WalletUsageRow, error) {
	rows, err := q.db.QueryContext(ctx, listWalletUsage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WalletUsageRow
	for rows.Next() {
		var i WalletUsageRow
		if err := rows.Scan(
			&i.ID,
			&i.Type,
			&i.Name,
			&i.OpeningBalanceCents,
			&i.CurrentBalanceCents,
			&i.MpesaNumber,
			&i.IsArchived,
			&i.Unused,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const debitWallet = `-- name: DebitWallet :execrows
UPDATE wallets
SET current_balance_cents = current_balance_cents - ?1
WHERE id = ?2 AND is_archived = 0 AND current_balance_cents >= ?1
`

// DebitWallet subtracts amount only while the wallet is active and covers
// it. Zero rows affected means one of the guards failed.
func (q *Queries) DebitWallet(ctx context.Context, id int64, amountCents int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, debitWallet, amountCents, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const creditWallet = `-- name: CreditWallet :execrows
UPDATE wallets SET current_balance_cents = current_balance_cents + ? WHERE id = ?
`

func (q *Queries) CreditWallet(ctx context.Context, id int64, amountCents int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, creditWallet, amountCents, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const walletLedgerTotals = `-- name: WalletLedgerTotals :many
SELECT w.id, w.name, w.opening_balance_cents, w.current_balance_cents,
       COUNT(e.id) AS expense_count,
       COALESCE(SUM(e.amount_cents), 0) AS expenses_cents
FROM wallets w
LEFT JOIN expenses e ON e.wallet_id = w.id
GROUP BY w.id
ORDER BY w.id
`

type WalletLedgerTotalsRow struct {
	ID                  int64
	Name                string
	OpeningBalanceCents int64
	CurrentBalanceCents int64
	ExpenseCount        int64
	ExpensesCents       int64
}

func (q *Queries) WalletLedgerTotals(ctx context.Context) ([]WalletLedgerTotalsRow, error) {
	rows, err := q.db.QueryContext(ctx, walletLedgerTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WalletLedgerTotalsRow
	for rows.Next() {
		var i WalletLedgerTotalsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.OpeningBalanceCents,
			&i.CurrentBalanceCents,
			&i.ExpenseCount,
			&i.ExpensesCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const walletLedgerTotal = `-- name: WalletLedgerTotal :one
SELECT w.id, w.name, w.opening_balance_cents, w.current_balance_cents,
       COUNT(e.id) AS expense_count,
       COALESCE(SUM(e.amount_cents), 0) AS expenses_cents
FROM wallets w
LEFT JOIN expenses e ON e.wallet_id = w.id
WHERE w.id = ?
GROUP BY w.id
`

func (q *Queries) WalletLedgerTotal(ctx context.Context, id int64) (WalletLedgerTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, walletLedgerTotal, id)
	var i WalletLedgerTotalsRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.OpeningBalanceCents,
		&i.CurrentBalanceCents,
		&i.ExpenseCount,
		&i.ExpensesCents,
	)
	return i, err
}

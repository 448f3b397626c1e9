package storage

import (
	"context"
	"database/sql"
)

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (date, time, amount_cents, wallet_id, category_id, subcategory_id, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, date, time, amount_cents, wallet_id, category_id, subcategory_id, description
`

type CreateExpenseParams struct {
	Date          string
	Time          string
	AmountCents   int64
	WalletID      int64
	CategoryID    int64
	SubcategoryID sql.NullInt64
	Description   sql.NullString
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Date,
		arg.Time,
		arg.AmountCents,
		arg.WalletID,
		arg.CategoryID,
		arg.SubcategoryID,
		arg.Description,
	)
	return scanExpense(row)
}

const getExpense = `-- name: GetExpense :one
SELECT id, date, time, amount_cents, wallet_id, category_id, subcategory_id, description
FROM expenses WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listLedgerEntries = `-- name: ListLedgerEntries :many
SELECT e.id, e.date, e.time, e.amount_cents, e.wallet_id, e.category_id, e.subcategory_id, e.description,
       w.name AS wallet_name,
       c.name AS category_name,
       s.name AS subcategory_name
FROM expenses e
JOIN wallets w ON w.id = e.wallet_id
JOIN categories c ON c.id = e.category_id
LEFT JOIN subcategories s ON s.id = e.subcategory_id
ORDER BY e.date DESC, e.time DESC, e.id DESC
LIMIT ?
`

type LedgerEntryRow struct {
	Expense
	WalletName      string
	CategoryName    string
	SubcategoryName sql.NullString
}

func (q *Queries) ListLedgerEntries(ctx context.Context, limit int64) ([]LedgerEntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntryRow
	for rows.Next() {
		var i LedgerEntryRow
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Time,
			&i.AmountCents,
			&i.WalletID,
			&i.CategoryID,
			&i.SubcategoryID,
			&i.Description,
			&i.WalletName,
			&i.CategoryName,
			&i.SubcategoryName,
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

package storage

import (
	"database/sql"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Name,
		&i.OpeningBalanceCents,
		&i.CurrentBalanceCents,
		&i.MpesaNumber,
		&i.IsArchived,
	)
	return i, err
}

func scanWallets(rows *sql.Rows) ([]Wallet, error) {
	defer rows.Close()
	var items []Wallet
	for rows.Next() {
		i, err := scanWallet(rows)
		if err != nil {
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

func scanSubcategories(rows *sql.Rows) ([]Subcategory, error) {
	defer rows.Close()
	var items []Subcategory
	for rows.Next() {
		var i Subcategory
		if err := rows.Scan(&i.ID, &i.Name, &i.CategoryID); err != nil {
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

func scanExpense(row rowScanner) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Time,
		&i.AmountCents,
		&i.WalletID,
		&i.CategoryID,
		&i.SubcategoryID,
		&i.Description,
	)
	return i, err
}

package storage

import (
	"database/sql"
)

type Category struct {
	ID   int64
	Name string
}

type Subcategory struct {
	ID         int64
	Name       string
	CategoryID int64
}

type Wallet struct {
	ID                  int64
	Type                string
	Name                string
	OpeningBalanceCents int64
	CurrentBalanceCents int64
	MpesaNumber         sql.NullString
	IsArchived          bool
}

type Expense struct {
	ID            int64
	Date          string
	Time          string
	AmountCents   int64
	WalletID      int64
	CategoryID    int64
	SubcategoryID sql.NullInt64
	Description   sql.NullString
}

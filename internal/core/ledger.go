package core

// WalletRow is one line of the wallet table shown to users.
type WalletRow struct {
	Wallet
	Unused    bool
	Deletable bool
}

// WalletProjection is the wallet state re-read after a mutation.
type WalletProjection struct {
	Active []Wallet
	Table  []WalletRow
}

// WalletResult is returned by wallet mutations that target one wallet.
type WalletResult struct {
	Wallet     Wallet
	Projection WalletProjection
}

// Receipt describes a recorded expense and the debited wallet.
type Receipt struct {
	Expense       Expense
	WalletName    string
	NewBalance    Money
	ActiveWallets []Wallet
}

// Reversal describes a deleted expense and the credited wallet.
type Reversal struct {
	Expense       Expense
	WalletName    string
	NewBalance    Money
	ActiveWallets []Wallet
}

// BalanceDrift is a wallet whose running balance disagrees with its ledger.
type BalanceDrift struct {
	WalletID       int64
	WalletName     string
	Recorded       Money
	Expected       Money
	ExpenseCount   int64
	ExpensesAmount Money
}

// Delta is Recorded minus Expected.
func (d BalanceDrift) Delta() Money {
	return d.Recorded.Sub(d.Expected)
}

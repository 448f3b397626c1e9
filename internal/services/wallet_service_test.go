package services

import (
	"context"
	"testing"

	"matumizi/internal/core"

	"github.com/stretchr/testify/require"
)

func TestAddWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	number := " 0712-345-678 "
	res, err := env.wallets.AddWallet(ctx, core.NewWallet{
		Name:           "Savings!",
		Type:           core.Bank,
		OpeningBalance: core.FromUnits(250),
		MpesaNumber:    &number,
	})
	require.NoError(t, err)
	require.Equal(t, "Savings", res.Wallet.Name)
	require.Equal(t, core.FromUnits(250), res.Wallet.CurrentBalance)
	require.False(t, res.Wallet.IsArchived)
	require.NotNil(t, res.Wallet.MpesaNumber)
	require.Equal(t, "0712-345-678", *res.Wallet.MpesaNumber)

	require.Len(t, res.Projection.Active, 3)
	require.Len(t, res.Projection.Table, 3)
	last := res.Projection.Table[2]
	require.True(t, last.Unused)
	require.True(t, last.Deletable)
}

func TestAddWalletRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.wallets.AddWallet(ctx, core.NewWallet{Name: "Main Wallet", Type: core.Cash})
	require.ErrorIs(t, err, core.ErrDuplicateName)

	_, err = env.wallets.AddWallet(ctx, core.NewWallet{Name: "Debt", Type: core.Cash, OpeningBalance: core.Money{Cents: -1}})
	require.ErrorIs(t, err, core.ErrValidation)

	_, err = env.wallets.AddWallet(ctx, core.NewWallet{Name: "Card", Type: "Visa"})
	require.ErrorIs(t, err, core.ErrValidation)

	_, err = env.wallets.AddWallet(ctx, core.NewWallet{Name: "  ", Type: core.Cash})
	require.ErrorIs(t, err, core.ErrValidation)

	wallets, err := env.wallets.ListWallets(ctx, false)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
}

func TestSetArchivedLastActiveWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.wallets.SetArchived(ctx, mpesaWalletID, true)
	require.NoError(t, err)
	require.True(t, res.Wallet.IsArchived)
	require.Len(t, res.Projection.Active, 1)

	_, err = env.wallets.SetArchived(ctx, mainWalletID, true)
	require.ErrorIs(t, err, core.ErrInvariantViolation)
	require.ErrorIs(t, err, core.ErrLastActiveWallet)

	main, err := env.wallets.GetWallet(ctx, mainWalletID)
	require.NoError(t, err)
	require.False(t, main.IsArchived)

	// idempotent
	res, err = env.wallets.SetArchived(ctx, mpesaWalletID, true)
	require.NoError(t, err)
	require.True(t, res.Wallet.IsArchived)

	res, err = env.wallets.SetArchived(ctx, mpesaWalletID, false)
	require.NoError(t, err)
	require.False(t, res.Wallet.IsArchived)

	_, err = env.wallets.SetArchived(ctx, 404, true)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteWalletGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	spare, err := env.wallets.AddWallet(ctx, core.NewWallet{Name: "Spare", Type: core.Cash, OpeningBalance: core.FromUnits(10)})
	require.NoError(t, err)
	spareID := spare.Wallet.ID

	_, err = env.ledger.RecordExpense(ctx, expense(mainWalletID, 5))
	require.NoError(t, err)

	unused, err := env.wallets.IsUnused(ctx, mainWalletID)
	require.NoError(t, err)
	require.False(t, unused)

	_, err = env.wallets.DeleteWallet(ctx, mainWalletID)
	require.ErrorIs(t, err, core.ErrWalletHasExpenses)

	_, err = env.wallets.SetArchived(ctx, spareID, true)
	require.NoError(t, err)
	_, err = env.wallets.DeleteWallet(ctx, spareID)
	require.ErrorIs(t, err, core.ErrDeleteArchivedWallet)

	_, err = env.wallets.SetArchived(ctx, spareID, false)
	require.NoError(t, err)
	projection, err := env.wallets.DeleteWallet(ctx, spareID)
	require.NoError(t, err)
	for _, w := range projection.Table {
		require.NotEqual(t, spareID, w.ID)
	}

	_, err = env.wallets.DeleteWallet(ctx, spareID)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = env.wallets.IsUnused(ctx, spareID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteSoleActiveWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.wallets.SetArchived(ctx, mainWalletID, true)
	require.NoError(t, err)

	// Mpesa is now the only active wallet and has no expenses.
	_, err = env.wallets.DeleteWallet(ctx, mpesaWalletID)
	require.ErrorIs(t, err, core.ErrLastActiveWallet)

	active, err := env.wallets.ListWallets(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, mpesaWalletID, active[0].ID)
}

func TestWalletTableDeletability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ledger.RecordExpense(ctx, expense(mainWalletID, 1))
	require.NoError(t, err)
	_, err = env.wallets.AddWallet(ctx, core.NewWallet{Name: "Old", Type: core.Cash})
	require.NoError(t, err)
	res, err := env.wallets.SetArchived(ctx, 3, true)
	require.NoError(t, err)

	byName := map[string]core.WalletRow{}
	for _, row := range res.Projection.Table {
		byName[row.Name] = row
	}
	require.False(t, byName["Main Wallet"].Unused)
	require.False(t, byName["Main Wallet"].Deletable)
	require.True(t, byName["Mpesa Wallet"].Deletable)
	require.True(t, byName["Old"].Unused)
	require.False(t, byName["Old"].Deletable)
}

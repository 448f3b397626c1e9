package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"matumizi/internal/backend"
	"matumizi/internal/core"
)

var (
	walletType    string
	walletOpening string
	walletMpesa   string
	activeOnly    bool
)

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "Manage wallets",
	Long: `Wallets hold money that expenses are paid from.

A wallet with expenses can be archived but never deleted, and the last
active wallet can be neither archived nor deleted.`,
}

var walletsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE:  runWalletsList,
}

var walletsTableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show every wallet with its usage and deletability",
	Args:  cobra.NoArgs,
	RunE:  runWalletsTable,
}

var walletsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a wallet",
	Example: `  matumizictl wallets add "Pocket cash" --type Cash --opening 1500
  matumizictl wallets add Safaricom --type Mpesa --opening 250.50 --mpesa 0712345678`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletsAdd,
}

var walletsArchiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive a wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetArchived(true),
}

var walletsUnarchiveCmd = &cobra.Command{
	Use:   "unarchive [id]",
	Short: "Make an archived wallet active again",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetArchived(false),
}

var walletsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an unused active wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletsDelete,
}

func init() {
	walletsListCmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active wallets")
	walletsAddCmd.Flags().StringVar(&walletType, "type", string(core.Cash), "Wallet type: Cash, Mpesa or Bank")
	walletsAddCmd.Flags().StringVar(&walletOpening, "opening", "0", "Opening balance")
	walletsAddCmd.Flags().StringVar(&walletMpesa, "mpesa", "", "M-Pesa phone number")

	walletsCmd.AddCommand(walletsListCmd)
	walletsCmd.AddCommand(walletsTableCmd)
	walletsCmd.AddCommand(walletsAddCmd)
	walletsCmd.AddCommand(walletsArchiveCmd)
	walletsCmd.AddCommand(walletsUnarchiveCmd)
	walletsCmd.AddCommand(walletsDeleteCmd)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, raw)
	}
	return id, nil
}

func runWalletsList(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		wallets, err := svc.Wallets.ListWallets(ctx, activeOnly)
		if err != nil {
			return err
		}
		return printWallets(cmd.OutOrStdout(), wallets)
	})
}

func runWalletsTable(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		p, err := svc.Wallets.Projection(ctx)
		if err != nil {
			return err
		}
		return printWalletTable(cmd.OutOrStdout(), p.Table)
	})
}

func runWalletsAdd(cmd *cobra.Command, args []string) error {
	t, err := core.ParseWalletType(walletType)
	if err != nil {
		return err
	}
	opening, err := core.ParseDecimal(walletOpening)
	if err != nil {
		return err
	}
	in := core.NewWallet{Name: args[0], Type: t, OpeningBalance: opening}
	if walletMpesa != "" {
		in.MpesaNumber = &walletMpesa
	}

	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		res, err := svc.Wallets.AddWallet(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added wallet %d: %s (%s) balance %s\n",
			res.Wallet.ID, res.Wallet.Name, res.Wallet.Type, res.Wallet.CurrentBalance)
		return printWalletTable(cmd.OutOrStdout(), res.Projection.Table)
	})
}

func runSetArchived(archived bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
			res, err := svc.Wallets.SetArchived(ctx, id, archived)
			if err != nil {
				return err
			}
			state := "active"
			if res.Wallet.IsArchived {
				state = "archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallet %d (%s) is %s\n", res.Wallet.ID, res.Wallet.Name, state)
			return nil
		})
	}
}

func runWalletsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		p, err := svc.Wallets.DeleteWallet(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted wallet %d\n", id)
		return printWalletTable(cmd.OutOrStdout(), p.Table)
	})
}

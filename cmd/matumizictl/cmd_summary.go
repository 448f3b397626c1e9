package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"matumizi/internal/backend"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize spending",
}

var summaryCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Total spending per category, largest first",
	Args:  cobra.NoArgs,
	RunE:  runSummaryCategories,
}

var summaryMonthsCmd = &cobra.Command{
	Use:   "months",
	Short: "Total spending per calendar month",
	Args:  cobra.NoArgs,
	RunE:  runSummaryMonths,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare wallet balances with their recorded expenses",
	Long: `Checks that every wallet's balance equals its opening balance minus the
sum of its expenses. Drifted wallets are reported, never corrected, and the
command exits non-zero when any are found.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	addFilterFlags(summaryCategoriesCmd)
	addFilterFlags(summaryMonthsCmd)

	summaryCmd.AddCommand(summaryCategoriesCmd)
	summaryCmd.AddCommand(summaryMonthsCmd)
}

func runSummaryCategories(cmd *cobra.Command, args []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		totals, err := svc.Ledger.SpendingByCategory(ctx, f)
		if err != nil {
			return err
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "CATEGORY\tTOTAL")
		for _, t := range totals {
			fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Amount)
		}
		return tw.Flush()
	})
}

func runSummaryMonths(cmd *cobra.Command, args []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		months, err := svc.Ledger.MonthlySpending(ctx, f)
		if err != nil {
			return err
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "MONTH\tTOTAL")
		for _, m := range months {
			fmt.Fprintf(tw, "%04d-%02d %s\t%s\n", m.Year, m.Month, time.Month(m.Month).String()[:3], m.Total)
		}
		return tw.Flush()
	})
}

func runReconcile(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		drifts, err := svc.Reconciler.Reconcile(ctx)
		if err != nil {
			return err
		}
		if len(drifts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All wallet balances agree with the ledger")
			return nil
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tWALLET\tRECORDED\tEXPECTED\tDELTA\tEXPENSES")
		for _, d := range drifts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
				d.WalletID, d.WalletName, d.Recorded, d.Expected, d.Delta(), d.ExpenseCount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		return fmt.Errorf("%d wallet(s) drifted from the ledger", len(drifts))
	})
}

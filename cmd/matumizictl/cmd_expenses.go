package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"matumizi/internal/backend"
	"matumizi/internal/core"
)

var (
	expenseDate        string
	expenseTime        string
	expenseAmount      string
	expenseWallet      int64
	expenseCategory    int64
	expenseSubcategory int64
	expenseDescription string
	listLimit          int

	filterFrom       string
	filterTo         string
	filterCategories []int64
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Record, reverse and list expenses",
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent expenses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runExpensesList,
}

var expensesFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List expenses within a date range and categories",
	Args:  cobra.NoArgs,
	RunE:  runExpensesFilter,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense and debit its wallet",
	Example: `  matumizictl expenses add --amount 250 --wallet 1 --category 1
  matumizictl expenses add --date 2025-01-15 --time 09:30 --amount 80 --wallet 2 --category 2 --description "Matatu"`,
	Args: cobra.NoArgs,
	RunE: runExpensesAdd,
}

var expensesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an expense and credit its wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesDelete,
}

func init() {
	expensesListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum entries (default: EXPENSE_LIST_LIMIT)")

	addFilterFlags(expensesFilterCmd)

	f := expensesAddCmd.Flags()
	f.StringVar(&expenseDate, "date", "", "Expense date YYYY-MM-DD (default: today)")
	f.StringVar(&expenseTime, "time", "", "Expense time HH:MM (default: now)")
	f.StringVar(&expenseAmount, "amount", "", "Amount, e.g. 120.50")
	f.Int64Var(&expenseWallet, "wallet", 0, "Wallet id")
	f.Int64Var(&expenseCategory, "category", 0, "Category id")
	f.Int64Var(&expenseSubcategory, "subcategory", 0, "Subcategory id")
	f.StringVar(&expenseDescription, "description", "", "Free text description")
	_ = expensesAddCmd.MarkFlagRequired("amount")
	_ = expensesAddCmd.MarkFlagRequired("wallet")
	_ = expensesAddCmd.MarkFlagRequired("category")

	expensesCmd.AddCommand(expensesListCmd)
	expensesCmd.AddCommand(expensesFilterCmd)
	expensesCmd.AddCommand(expensesAddCmd)
	expensesCmd.AddCommand(expensesDeleteCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterFrom, "from", "", "First date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filterTo, "to", "", "Last date, inclusive (YYYY-MM-DD)")
	cmd.Flags().Int64SliceVar(&filterCategories, "category", nil, "Category ids (repeat or comma separate)")
}

func buildFilter() (core.ExpenseFilter, error) {
	var f core.ExpenseFilter
	if filterFrom != "" {
		d, err := core.ParseDate(filterFrom)
		if err != nil {
			return f, err
		}
		f.From = &d
	}
	if filterTo != "" {
		d, err := core.ParseDate(filterTo)
		if err != nil {
			return f, err
		}
		f.To = &d
	}
	f.CategoryIDs = filterCategories
	return f, f.Validate()
}

func buildExpense(now time.Time) (core.NewExpense, error) {
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if expenseDate != "" {
		d, err := core.ParseDate(expenseDate)
		if err != nil {
			return core.NewExpense{}, err
		}
		date = d
	}
	tod := core.TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}
	if expenseTime != "" {
		t, err := core.ParseTimeOfDay(expenseTime)
		if err != nil {
			return core.NewExpense{}, err
		}
		tod = t
	}
	amount, err := core.ParseAmount(expenseAmount)
	if err != nil {
		return core.NewExpense{}, err
	}

	in := core.NewExpense{
		Date:       date,
		Time:       &tod,
		Amount:     amount,
		WalletID:   expenseWallet,
		CategoryID: expenseCategory,
	}
	if expenseSubcategory > 0 {
		in.SubcategoryID = &expenseSubcategory
	}
	if expenseDescription != "" {
		in.Description = &expenseDescription
	}
	return in, nil
}

func runExpensesList(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		entries, err := svc.Ledger.ListExpenses(ctx, listLimit)
		if err != nil {
			return err
		}
		return printEntries(cmd.OutOrStdout(), entries)
	})
}

func runExpensesFilter(cmd *cobra.Command, args []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		entries, err := svc.Ledger.FilterExpenses(ctx, f)
		if err != nil {
			return err
		}
		return printEntries(cmd.OutOrStdout(), entries)
	})
}

func runExpensesAdd(cmd *cobra.Command, args []string) error {
	in, err := buildExpense(time.Now())
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		r, err := svc.Ledger.RecordExpense(ctx, in)
		if err != nil {
			return err
		}
		printMovement(cmd.OutOrStdout(), "Recorded", r.Expense, r.WalletName, r.NewBalance)
		return nil
	})
}

func runExpensesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		r, err := svc.Ledger.DeleteExpense(ctx, id)
		if err != nil {
			return err
		}
		printMovement(cmd.OutOrStdout(), "Reversed", r.Expense, r.WalletName, r.NewBalance)
		return nil
	})
}

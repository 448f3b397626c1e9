package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"matumizi/internal/core"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printWallets(w io.Writer, wallets []core.Wallet) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tOPENING\tBALANCE\tMPESA\tARCHIVED")
	for _, wl := range wallets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			wl.ID, wl.Name, wl.Type, wl.OpeningBalance, wl.CurrentBalance,
			optional(wl.MpesaNumber), yesNo(wl.IsArchived))
	}
	return tw.Flush()
}

func printWalletTable(w io.Writer, rows []core.WalletRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tARCHIVED\tUNUSED\tDELETABLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Type, r.CurrentBalance,
			yesNo(r.IsArchived), yesNo(r.Unused), yesNo(r.Deletable))
	}
	return tw.Flush()
}

func printEntries(w io.Writer, entries []core.LedgerEntry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tAMOUNT\tWALLET\tCATEGORY\tSUBCATEGORY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Time, e.Amount, e.WalletName, e.CategoryName,
			optional(e.SubcategoryName), optional(e.Description))
	}
	return tw.Flush()
}

func printMovement(w io.Writer, verb string, e core.Expense, wallet string, balance core.Money) {
	fmt.Fprintf(w, "%s expense %d: %s on %s %s\n", verb, e.ID, e.Amount, e.Date, e.Time)
	fmt.Fprintf(w, "%s balance: %s\n", wallet, balance)
}

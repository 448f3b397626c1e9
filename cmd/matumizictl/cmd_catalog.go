package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"matumizi/internal/backend"
)

var subcategoryParent int64

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List and add expense categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesList,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var subcategoriesCmd = &cobra.Command{
	Use:   "subcategories",
	Short: "List and add subcategories",
}

var subcategoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subcategories, optionally of one category",
	Args:  cobra.NoArgs,
	RunE:  runSubcategoriesList,
}

var subcategoriesAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a subcategory under --category",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubcategoriesAdd,
}

func init() {
	subcategoriesCmd.PersistentFlags().Int64Var(&subcategoryParent, "category", 0, "Parent category id")

	categoriesCmd.AddCommand(categoriesListCmd)
	categoriesCmd.AddCommand(categoriesAddCmd)
	subcategoriesCmd.AddCommand(subcategoriesListCmd)
	subcategoriesCmd.AddCommand(subcategoriesAddCmd)
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		cats, err := svc.Catalog.ListCategories(ctx)
		if err != nil {
			return err
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tNAME")
		for _, c := range cats {
			fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
		}
		return tw.Flush()
	})
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		c, err := svc.Catalog.AddCategory(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added category %d: %s\n", c.ID, c.Name)
		return nil
	})
}

func runSubcategoriesList(cmd *cobra.Command, args []string) error {
	var parent *int64
	if subcategoryParent > 0 {
		parent = &subcategoryParent
	}
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		subs, err := svc.Catalog.ListSubcategories(ctx, parent)
		if err != nil {
			return err
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tCATEGORY\tNAME")
		for _, s := range subs {
			fmt.Fprintf(tw, "%d\t%d\t%s\n", s.ID, s.CategoryID, s.Name)
		}
		return tw.Flush()
	})
}

func runSubcategoriesAdd(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *backend.Services) error {
		s, err := svc.Catalog.AddSubcategory(ctx, subcategoryParent, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added subcategory %d: %s (category %d)\n", s.ID, s.Name, s.CategoryID)
		return nil
	})
}

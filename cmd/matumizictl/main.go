package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"matumizi/internal/backend"
	"matumizi/internal/cli"
	"matumizi/internal/config"
	"matumizi/internal/log"
)

var (
	// Global flags
	dbPath  string
	verbose bool
	timeout time.Duration

	logger *log.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "matumizictl",
	Short: "matumizictl - manage the matumizi wallet ledger",
	Long: `matumizictl works directly on the ledger database.

It shares the store, the retry policy and the ledger rules with the
matumizi server, so it is safe to run while the server is up.
Configuration comes from the environment (.env is honoured); --db
overrides SQLITE_DB_PATH.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = log.New(log.Config{
			Level:     level,
			Component: log.ComponentCLI,
			Handler:   slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}),
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Ledger database path (default: SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(subcategoriesCmd)
	rootCmd.AddCommand(walletsCmd)
	rootCmd.AddCommand(expensesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withServices opens the ledger for the duration of fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *backend.Services) error) error {
	cfg := config.Load()
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logger.Warn("Failed to close ledger", log.FieldError, cerr)
		}
	}()
	return fn(ctx, svc)
}

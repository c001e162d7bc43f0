package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
	owner   string
	token   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "debtledger-cli",
		Short:         "DebtLedger CLI tool",
		Long:          `A command line interface for the DebtLedger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("DEBTLEDGER_URL", "http://localhost:8080"), "Base URL of the DebtLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.owner, "owner", os.Getenv("DEBTLEDGER_OWNER"), "Acting owner, sent as X-Owner")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("DEBTLEDGER_TOKEN"), "Bearer token, takes precedence over --owner")

	rootCmd.AddCommand(
		debtCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

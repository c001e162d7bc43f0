package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	pgRepo "github.com/iho/debtledger/internal/adapter/repository/postgres"
	"github.com/iho/debtledger/internal/infrastructure/postgres"
	"github.com/iho/debtledger/internal/usecase"
)

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(reconcileCmd(opts))

	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	var fix bool
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored settlement flags with balances derived from rows",
		Long: `Without --fix the report is fetched from the API.
With --fix the command connects to the database directly and rewrites the
settlement flag of every debt that disagrees with its rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !fix {
				var report dto.ReconciliationResponse
				if err := newAPIClient(opts).do(http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
					return err
				}
				if err := printJSON(out, report); err != nil {
					return err
				}
				if !report.Consistent {
					return fmt.Errorf("%d discrepancies found", len(report.Discrepancies))
				}
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, databaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := usecase.NewReconciliationUseCase(
				pgRepo.NewTxManager(pool),
				pgRepo.NewDebtRepository(pool),
				pgRepo.NewAdditionRepository(pool),
				pgRepo.NewPaymentRepository(pool),
				nil,
				usecase.WithRepairLog(pgRepo.NewActivityRepository(pool)),
				usecase.WithRepairLogger(zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()),
			)

			return repairLedger(ctx, uc, out)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair discrepancies in the database")
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Database URL, used with --fix")

	return cmd
}

// repairLedger checks the ledger and repairs every discrepancy it finds.
func repairLedger(ctx context.Context, uc *usecase.ReconciliationUseCase, out io.Writer) error {
	report, err := uc.Check(ctx)
	if err != nil {
		return err
	}

	if report.Consistent {
		fmt.Fprintf(out, "Ledger consistent: %d debts checked\n", report.TotalDebts)
		return nil
	}

	for _, d := range report.Discrepancies {
		res, err := uc.Repair(ctx, d.DebtID)
		if err != nil {
			return fmt.Errorf("repair %s: %w", d.DebtID, err)
		}
		fmt.Fprintf(out, "Repaired %s: paid %v -> %v (remaining %s)\n", d.DebtID, d.StoredPaid, res.StoredPaid, res.Remaining)
	}

	fmt.Fprintf(out, "Repaired %d of %d debts\n", len(report.Discrepancies), report.TotalDebts)
	return nil
}

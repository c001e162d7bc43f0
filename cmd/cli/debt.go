package main

import (
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/debtledger/internal/adapter/http/dto"
)

func debtCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Debt operations",
	}

	cmd.AddCommand(debtShowCmd(opts), debtListCmd(opts), debtAddCmd(opts), debtPayCmd(opts))

	return cmd
}

func debtShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <debt-id>",
		Short: "Show a debt with its additions and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var debt dto.DebtDetailsResponse
			if err := newAPIClient(opts).do(http.MethodGet, "/api/v1/debts/"+url.PathEscape(args[0]), nil, &debt); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), debt)
		},
	}
}

func debtListCmd(opts *options) *cobra.Command {
	var status, counterparty string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List debts of the acting owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if counterparty != "" {
				q.Set("counterparty_id", counterparty)
			}

			path := "/api/v1/debts"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var list dto.ListDebtsResponse
			if err := newAPIClient(opts).do(http.MethodGet, path, nil, &list); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCOUNTERPARTY\tDIRECTION\tTOTAL\tREMAINING\tPAID")
			for _, d := range list.Debts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%v\n",
					d.ID, truncate(d.CounterpartyID, 20), d.Direction, d.TotalDebt, d.Remaining, d.Paid)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "open, settled or all")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "Only debts against this counterparty")

	return cmd
}

func debtAddCmd(opts *options) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "add <debt-id> <amount>",
		Short: "Add an amount to a debt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			var res dto.AdditionResultResponse
			req := dto.AddAmountRequest{Amount: amount, Notes: notes}
			if err := newAPIClient(opts).do(http.MethodPost, "/api/v1/debts/"+url.PathEscape(args[0])+"/add", req, &res); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: total %s, remaining %s\n", amount, res.TotalDebt, res.Remaining)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the addition")

	return cmd
}

func debtPayCmd(opts *options) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "pay <debt-id> <amount>",
		Short: "Record a payment against a debt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			var res dto.PaymentResultResponse
			req := dto.RecordPaymentRequest{Amount: amount, Notes: notes}
			if err := newAPIClient(opts).do(http.MethodPost, "/api/v1/debts/"+url.PathEscape(args[0])+"/pay", req, &res); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Paid %s: remaining %s\n", amount, res.Remaining)
			if res.Paid {
				fmt.Fprintln(out, "Debt is settled")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the payment")

	return cmd
}

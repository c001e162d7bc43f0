package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/auth"
)

func tokenCmd() *cobra.Command {
	var secret string
	var expires time.Duration

	cmd := &cobra.Command{
		Use:   "token <owner-id>",
		Short: "Issue a bearer token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}

			actor, err := domain.NewActor(args[0])
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(secret, expires).Generate(actor)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token lifetime")

	return cmd
}

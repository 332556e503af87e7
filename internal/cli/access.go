package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-bookclub-guard/internal/app"
	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

func newAccessCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Inspect and administer buyer access",
	}
	cmd.AddCommand(
		newAccessCheckCmd(opts),
		newAccessGetCmd(opts),
		newAccessSetStatusCmd(opts),
	)
	return cmd
}

func newAccessCheckCmd(opts *options) *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "check <email>",
		Short: "Print the access decision for a buyer email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					d   domain.AccessDecision
					err error
				)
				if p := strings.TrimSpace(product); p != "" {
					d, err = a.Access.ValidateProductAccess(ctx, args[0], p)
				} else {
					d, err = a.Access.ValidateAccess(ctx, args[0])
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}
	cmd.Flags().StringVar(&product, "product", "", "restrict the check to one product id")
	return cmd
}

func newAccessGetCmd(opts *options) *cobra.Command {
	var byTx bool
	cmd := &cobra.Command{
		Use:   "get <email>",
		Short: "Print the stored transaction for a buyer email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					tx  *domain.AccessTransaction
					err error
				)
				if byTx {
					tx, err = a.Access.FindByTransactionID(ctx, args[0])
				} else {
					tx, err = a.Access.GetTransaction(ctx, args[0])
				}
				if err != nil {
					return fmt.Errorf("%w: %s", err, args[0])
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
	cmd.Flags().BoolVar(&byTx, "tx", false, "treat the argument as a platform transaction id")
	return cmd
}

func newAccessSetStatusCmd(opts *options) *cobra.Command {
	var subscription string
	cmd := &cobra.Command{
		Use:   "set-status <transaction-id> <status>",
		Short: "Set the status of a transaction by platform transaction id",
		Long:  "Statuses: APPROVED, CANCELED, REFUNDED, CHARGEBACK, BLOCKED. Subscription statuses: ACTIVE, CANCELED, OVERDUE, DELAYED.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, sub, err := services.ParseStatus(args[1], subscription)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				found, err := a.Access.UpdateTransactionStatus(ctx, args[0], status, sub)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %s", services.ErrTransactionNotFound, args[0])
				}
				log.Info().
					Str("actor", opts.who()).
					Str("transaction_id", args[0]).
					Str("status", string(status)).
					Msg("transaction status updated")
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], status)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&subscription, "subscription", "", "also set the subscription status")
	return cmd
}

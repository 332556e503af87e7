package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-bookclub-guard/internal/app"
	"github.com/tbourn/go-bookclub-guard/internal/repo"
)

// keyLister is implemented by stores that can enumerate their keys.
type keyLister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

func newWebhooksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Maintain webhook delivery records",
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete processed-event records older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := repo.PruneWebhookEvents(ctx, a.DB, time.Now().UTC().Add(-olderThan))
				if err != nil {
					return err
				}
				log.Info().Str("actor", opts.who()).Int64("deleted", n).Dur("older_than", olderThan).Msg("webhook events pruned")
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
				return err
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum record age")
	cmd.AddCommand(prune)
	return cmd
}

func newStoreCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the key-value store",
	}

	var prefix string
	keys := &cobra.Command{
		Use:   "keys",
		Short: "List stored keys (sqlite backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				kl, ok := a.Store.(keyLister)
				if !ok {
					return fmt.Errorf("store backend %q cannot list keys", a.Config.Store.Backend)
				}
				ks, err := kl.Keys(ctx, prefix)
				if err != nil {
					return err
				}
				for _, k := range ks {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
	keys.Flags().StringVar(&prefix, "prefix", "", "only keys starting with prefix")
	cmd.AddCommand(keys)
	return cmd
}

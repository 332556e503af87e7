package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-bookclub-guard/internal/app"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

func newWordsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the global banned-word list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the global list, one word per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, w := range a.Moderation.ListGlobalWords(ctx) {
					fmt.Fprintln(cmd.OutOrStdout(), w)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <word>...",
		Short: "Add words to the global list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, w := range args {
					if _, err := services.CheckWord(w); err != nil {
						return fmt.Errorf("add %q: %w", w, err)
					}
					if err := a.Moderation.AddGlobalWord(ctx, w); err != nil {
						return fmt.Errorf("add %q: %w", w, err)
					}
					log.Info().Str("actor", opts.who()).Str("word", w).Msg("global word added")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <word>...",
		Short: "Remove words from the global list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, w := range args {
					if err := a.Moderation.RemoveGlobalWord(ctx, w); err != nil {
						return fmt.Errorf("remove %q: %w", w, err)
					}
					log.Info().Str("actor", opts.who()).Str("word", w).Msg("global word removed")
				}
				return nil
			})
		},
	})

	return cmd
}

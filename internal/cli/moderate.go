package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-bookclub-guard/internal/app"
)

func newModerateCmd(opts *options) *cobra.Command {
	var (
		channel string
		filter  bool
	)
	cmd := &cobra.Command{
		Use:   "moderate <text>...",
		Short: "Check a message against the global and channel word lists",
		Long:  "Prints the moderation result as JSON, or the masked text with --filter. Arguments are joined with spaces.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if filter {
					out, err := a.Moderation.FilterChannel(ctx, channel, text)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
					return err
				}
				res, err := a.Moderation.ModerateChannel(ctx, channel, text)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "channel id whose rules apply")
	cmd.Flags().BoolVar(&filter, "filter", false, "print the masked text instead of the decision")
	return cmd
}

// Package cli implements the bookclub admin command line: the HTTP server
// plus one-shot commands for word lists, access records, moderation checks
// and store maintenance. Every command builds its own App from the
// environment, so the CLI and a running server share the same store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-bookclub-guard/internal/app"
	"github.com/tbourn/go-bookclub-guard/internal/config"
	"github.com/tbourn/go-bookclub-guard/internal/sysutil"
)

// options are the persistent flags shared by all commands. Empty values
// keep whatever the environment configured.
type options struct {
	dbPath   string
	backend  string
	logLevel string
	actor    string

	cfg config.Config
}

// NewRootCmd returns the bookclub command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "bookclub",
		Short:         "Book club guard: moderation and access admin",
		Long:          "Admin backend for a paid book club: message moderation, channel rules, buyer access validation and Hotmart webhook ingestion.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	pf.StringVar(&opts.backend, "store", "", "key-value store backend: sqlite|memory|redis|valkey (overrides STORE_BACKEND)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pf.StringVar(&opts.actor, "actor", "", "admin identity recorded in audit logs (defaults to BOOKCLUB_ADMIN_USER or $USER)")

	root.AddCommand(
		newServeCmd(opts),
		newWordsCmd(opts),
		newAccessCmd(opts),
		newModerateCmd(opts),
		newWebhooksCmd(opts),
		newStoreCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context) {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		os.Exit(1)
	}
}

// load reads the environment config and applies flag overrides.
func (o *options) load(logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	cfg.LogLevel = sysutil.FirstNonEmpty(o.logLevel, cfg.LogLevel)
	sysutil.SetupLogger(logOut, cfg.LogLevel, cfg.LogPretty)
	o.cfg = cfg
	return nil
}

// who returns the admin identity for audit logs.
func (o *options) who() string {
	a := sysutil.FirstNonEmpty(o.actor, os.Getenv("BOOKCLUB_ADMIN_USER"), os.Getenv("USER"))
	if a == "" {
		return "cli"
	}
	return a
}

// withApp builds an App for the duration of fn.
func (o *options) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Version)
			return err
		},
	}
}

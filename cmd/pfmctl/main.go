// Command pfmctl runs the ledger engine from the command line: migrations, the API server,
// statement imports and quick reads against the configured store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/money_tracker/internal/platform/config"
	"github.com/SscSPs/money_tracker/internal/platform/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state every subcommand shares once the root pre-run has loaded it.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pfmctl",
		Short:         "Ledger and budget engine tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = server.NewLogger(cfg, os.Stderr)
			slog.SetDefault(a.logger)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("storage", "", "storage driver (postgres, sqlite)")
	flags.String("sqlite-path", "", "SQLite database file")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("user", "", "acting user id")
	flags.String("currency", "", "ISO 4217 code used to display amounts")

	// Flags override the environment keys of the same setting.
	_ = viper.BindPFlag("STORAGE_DRIVER", flags.Lookup("storage"))
	_ = viper.BindPFlag("SQLITE_PATH", flags.Lookup("sqlite-path"))
	_ = viper.BindPFlag("PGSQL_URL", flags.Lookup("database-url"))
	_ = viper.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = viper.BindPFlag("DISPLAY_CURRENCY", flags.Lookup("currency"))
	_ = viper.BindPFlag("CLI_USER", flags.Lookup("user"))

	root.AddCommand(
		migrateCmd(a),
		serveCmd(a),
		importOFXCmd(a),
		budgetCmd(a),
		balanceCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

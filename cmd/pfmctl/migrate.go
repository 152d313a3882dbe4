package main

import (
	"github.com/SscSPs/money_tracker/internal/platform/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return storage.Migrate(cmd.Context(), a.cfg, a.logger)
		},
	}
}

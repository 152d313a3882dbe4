package main

import (
	"github.com/SscSPs/money_tracker/internal/platform/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Run(cmd.Context(), a.cfg, a.logger)
		},
	}
	cmd.Flags().String("port", "", "listen port")
	_ = viper.BindPFlag("PORT", cmd.Flags().Lookup("port"))
	return cmd
}

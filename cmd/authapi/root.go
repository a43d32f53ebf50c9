package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	serve := NewServeCmd()

	cmd := &cobra.Command{
		Use:   "authapi",
		Short: "User authentication REST API",
		Long: `authapi registers users, logs them in with bcrypt-checked passwords
and issues JWT bearer tokens. Configuration is read from the environment.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

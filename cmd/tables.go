package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"tabledump/config"
	"tabledump/dbexport"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List all tables in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(ctx context.Context, _ *config.Config, b dbexport.Backend) error {
			return dbexport.ListTables(ctx, b, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"tabledump/config"
	"tabledump/dbexport"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <table>",
	Short: "List all fields in the specified table with their export kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]
		return withBackend(func(ctx context.Context, _ *config.Config, b dbexport.Backend) error {
			return withTableHint(dbexport.ListFields(ctx, b, table, cmd.OutOrStdout()))
		})
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tabledump/config"
	"tabledump/dbexport"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [file]",
	Short: "Print the JSON Schema of the config file",
	Long: `Print the JSON Schema describing the config file, or write it to file when one
is given. Editors can use it to validate and complete config.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Schema()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("%w: failed to write schema: %w", dbexport.ErrIO, err)
		}
		logger.Info().Str("path", args[0]).Msg("schema written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

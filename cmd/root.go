package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tabledump/dbexport"
)

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

var (
	flagConfig   string
	flagServer   string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagLogLevel string
	flagTimeout  time.Duration

	exportOutput           string
	exportType             = dbexport.FormatJSON
	exportCompress         = dbexport.CompressNone
	exportRowsPerStatement int
	exportMetricsFile      string
)

var rootCmd = &cobra.Command{
	Use:   "tabledump",
	Short: "Export database tables to JSON or SQL INSERT scripts",
	Long: `tabledump reads a config file naming a database and a list of tables,
then writes one JSON array or SQL INSERT script per table.

Supported databases: mysql, mssql, postgres, sqlite, duckdb.
Connection values can be overridden with TABLEDUMP_SERVER, TABLEDUMP_PORT,
TABLEDUMP_USER, TABLEDUMP_PASSWORD and TABLEDUMP_DATABASE (a .env file is read
when present) or with the matching flags.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr(), flagLogLevel)
	},
	RunE: runExport,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "config.json", "config file (.json, .yaml or .yml)")
	pf.StringVar(&flagServer, "server", "", "database server, overrides the config file")
	pf.IntVar(&flagPort, "port", 0, "database port, overrides the config file")
	pf.StringVar(&flagUser, "user", "", "database user, overrides the config file")
	pf.StringVar(&flagPassword, "password", "", "database password, overrides the config file")
	pf.StringVar(&flagDatabase, "database", "", "database name or file, overrides the config file")
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "per-table timeout, 0 disables it")

	f := rootCmd.Flags()
	f.StringVarP(&exportOutput, "output", "o", "/tmp", "output directory")
	f.VarP(&exportType, "type", "t", "export format (json, sql)")
	f.Var(&exportCompress, "compress", "compress output files (none, gzip, zstd)")
	f.IntVar(&exportRowsPerStatement, "rows-per-statement", 0, "split SQL output into INSERT statements of at most this many rows, 0 writes one statement")
	f.StringVar(&exportMetricsFile, "metrics-file", "", "write Prometheus text-format export metrics to this file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitFunc(1)
	}
}

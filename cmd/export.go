package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tabledump/config"
	"tabledump/dbexport"
)

func runExport(cmd *cobra.Command, args []string) error {
	if len(exportOutput) == 0 {
		return errors.New("--output must not be empty")
	}
	if exportRowsPerStatement < 0 {
		return fmt.Errorf("--rows-per-statement must not be negative, got %d", exportRowsPerStatement)
	}

	return withBackend(func(ctx context.Context, cfg *config.Config, b dbexport.Backend) error {
		if len(cfg.Tables) == 0 {
			logger.Warn().Str("config", flagConfig).Msg("no tables configured, nothing to export")
			return nil
		}
		var metrics *dbexport.Metrics
		if exportMetricsFile != "" {
			metrics = dbexport.NewMetrics()
		}
		w := dbexport.NewWriter(b, exportOutput,
			dbexport.WithCompression(exportCompress),
			dbexport.WithRowsPerStatement(exportRowsPerStatement),
			dbexport.WithTimeout(flagTimeout),
			dbexport.WithLogger(logger),
			dbexport.WithMetrics(metrics),
		)

		results, err := w.ExportAll(ctx, cfg.Tables, exportType)
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "Table '%s' data written to %s (%d rows) in %s\n",
				r.Table, r.Path, r.Rows, r.Elapsed.Round(time.Millisecond))
		}
		if metrics != nil {
			if merr := metrics.WriteFile(exportMetricsFile); merr != nil {
				logger.Error().Err(merr).Str("path", exportMetricsFile).Msg("failed to write metrics")
				if err == nil {
					err = fmt.Errorf("%w: failed to write metrics: %w", dbexport.ErrIO, merr)
				}
			}
		}
		if err != nil {
			logger.Error().Err(err).Str("kind", dbexport.ErrorKind(err)).Msg("export failed")
			return withTableHint(err)
		}
		return nil
	})
}

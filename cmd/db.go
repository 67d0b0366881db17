// Package cmd contains the command-line interface of tabledump.
//
// Every command reads the config file given by --config, applies the TABLEDUMP_*
// environment variables (optionally from a .env file) and then the connection flags,
// opens the configured database and runs against it until done or interrupted.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tabledump/config"
	"tabledump/dbexport"
)

// openBackend is a package-level variable to allow test injection.
var openBackend = func(ctx context.Context, d config.Database) (dbexport.Backend, error) {
	b, err := dbexport.Open(ctx, d)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func overrides() config.Overrides {
	return config.Overrides{
		Server:   flagServer,
		Port:     flagPort,
		User:     flagUser,
		Password: flagPassword,
		Database: flagDatabase,
	}
}

// withBackend loads the configuration, connects to the database, sets up signal
// handling and calls fn with a live backend. The backend is closed when fn returns.
func withBackend(fn func(ctx context.Context, cfg *config.Config, b dbexport.Backend) error) error {
	cfg, err := config.Load(flagConfig, overrides())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx := ctx
	if flagTimeout > 0 {
		var cancel context.CancelFunc
		openCtx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}
	b, err := openBackend(openCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer b.Close()
	logger.Info().
		Str("type", string(cfg.Database.Type)).
		Str("database", cfg.Database.Database).
		Msg("connected")
	return fn(ctx, cfg, b)
}

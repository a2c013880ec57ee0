package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sebuszqo/FinMind/internal/config"
	database "github.com/sebuszqo/FinMind/internal/db"
	"github.com/sebuszqo/FinMind/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "finmind",
		Short:        "Personal finance tracking API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the budget alert scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(_ *cobra.Command, args []string) error {
			direction := database.Up
			if len(args) == 1 {
				direction = database.Direction(args[0])
			}

			cfg := config.Load()
			if err := cfg.ValidateDatabase(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			if err := database.RunMigrations(cfg.DBConnectionString, direction); err != nil {
				return err
			}
			logger.Info("migrations applied", "direction", string(direction))
			return nil
		},
	}
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logConfig := log.DefaultConfig()
	logConfig.Level = level
	logger := log.New(logConfig)
	log.SetDefault(logger)
	return logger, nil
}

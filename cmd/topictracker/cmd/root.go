package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/database"
	"github.com/nfrund/topictracker/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "topictracker",
	Short: "Real-time topic tracker",
	Long: `Topic Tracker keeps a shared list of learning topics and pushes every
change to connected browsers over a websocket.

Available commands:
  serve     Run the HTTP and websocket server
  migrate   Apply the database schema and exit
  topics    Inspect stored topics
  events    List the change events published on the bus
  version   Print the version

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg := config.New()
	logging.New(cfg.LogFormat, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore connects to the configured backend and applies migrations.
func openStore(ctx context.Context, cfg config.Provider) (database.Store, error) {
	store, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.GetDBDriver(), err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("migrate %s store: %w", cfg.GetDBDriver(), err)
	}
	return store, nil
}

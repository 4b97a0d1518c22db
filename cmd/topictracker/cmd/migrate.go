package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		slog.Info("Migrations applied", "driver", cfg.DBDriver)
		return store.Close(ctx)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/voxarchive/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the dialogue_lines table and its indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, config.Load())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return err
			}
			slog.Info("schema up to date")
			return nil
		},
	}
}

package cmd

import (
	"commerceq/internal/config"
	"commerceq/internal/storage"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the commerce database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			ctx := context.Background()

			pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := storage.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info().Msg("schema applied")
			return nil
		},
	}
	return command
}

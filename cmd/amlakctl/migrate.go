package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/amlak-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplicar migraciones",
	Long:  `Aplica los scripts SQL embebidos que aún no figuran en schema_migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return fmt.Errorf("migración fallida: %w", err)
		}
		if len(applied) == 0 {
			log.Info().Msg("sin migraciones pendientes")
			return nil
		}
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		return nil
	},
}

// amlakctl tareas de administración fuera de la API: migraciones y alta del administrador.
//
// Uso:
//
//	amlakctl migrate
//	amlakctl seed-admin --email root@amlak.ae --password '...'
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/amlak-api/pkg/config"
	"github.com/jhoicas/amlak-api/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "amlakctl",
	Short: "Administración de amlak-api",
	Long: `amlakctl aplica el esquema de PostgreSQL y crea cuentas de administrador.
Lee la misma configuración que la API (DATABASE_URL, DB_*, APP_ENV).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		cfg = loaded
		log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
}

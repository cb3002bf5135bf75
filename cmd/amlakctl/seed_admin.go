package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/credential"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
	"github.com/jhoicas/amlak-api/internal/infrastructure/postgres"
)

var (
	adminEmail    string
	adminPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Crear un administrador",
	Long: `Crea la identidad y el perfil con rol admin. El registro público nunca asigna admin;
esta es la única forma de crear uno.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("--email y --password son requeridos")
		}
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			return err
		}
		defer pool.Close()

		// seed-admin no envía correos ni usa tokens de restablecimiento
		identities := postgres.NewIdentityRepository(pool, memstore.NewResetTokens(time.Now), credential.NewLogNotifier(log.Zerolog()), time.Hour)
		store := postgres.RemoteStore{
			DocumentRepo: postgres.NewDocumentRepository(pool, log.Component("documents")),
			IdentityRepo: identities,
		}
		id, err := seedAdmin(ctx, store, adminEmail, adminPassword, time.Now())
		if err != nil {
			return err
		}
		log.Info().Str("identity_id", id).Str("email", entity.NormalizeEmail(adminEmail)).Msg("administrador creado")
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email del administrador")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "contraseña (mínimo 6 caracteres)")
}

// seedAdmin crea identidad y perfil admin.
func seedAdmin(ctx context.Context, store repository.RemoteStore, email, password string, now time.Time) (string, error) {
	email = entity.NormalizeEmail(email)
	if err := entity.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("email inválido: %w", err)
	}
	if err := entity.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("contraseña inválida: %w", err)
	}
	identity, err := store.CreateIdentity(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("crear identidad: %w", err)
	}
	profile := entity.NewProfile(identity, entity.RoleAdmin, now)
	if err := store.Write(ctx, repository.CollectionUsers, identity.ID, profile.Fields()); err != nil {
		return "", fmt.Errorf("crear perfil: %w", err)
	}
	return identity.ID, nil
}

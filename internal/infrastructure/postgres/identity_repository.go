package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/credential"
)

var _ repository.CredentialStore = (*IdentityRepo)(nil)

// IdentityRepo proveedor de credenciales sobre la tabla identities.
// Los tokens de restablecimiento viven en un ResetTokenRepository (Redis en producción).
type IdentityRepo struct {
	pool        *pgxpool.Pool
	resetTokens repository.ResetTokenRepository
	notifier    credential.Notifier
	resetTTL    time.Duration
	bcryptCost  int
}

// NewIdentityRepository construye el adaptador de credenciales.
func NewIdentityRepository(
	pool *pgxpool.Pool,
	resetTokens repository.ResetTokenRepository,
	notifier credential.Notifier,
	resetTTL time.Duration,
) *IdentityRepo {
	return &IdentityRepo{pool: pool, resetTokens: resetTokens, notifier: notifier, resetTTL: resetTTL}
}

// Authenticate verifica email y contraseña.
func (r *IdentityRepo) Authenticate(ctx context.Context, email, password string) (*entity.Identity, error) {
	const query = `SELECT id, email, password_hash FROM identities WHERE email = $1`
	var id, stored, hash string
	err := r.pool.QueryRow(ctx, query, entity.NormalizeEmail(email)).Scan(&id, &stored, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identities.Authenticate: %w", err)
	}
	if err := credential.CheckPassword(hash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &entity.Identity{ID: id, Email: stored, CredentialState: entity.CredentialVerified}, nil
}

// CreateIdentity registra una identidad. El email duplicado se detecta por el índice único.
func (r *IdentityRepo) CreateIdentity(ctx context.Context, email, password string) (*entity.Identity, error) {
	hash, err := credential.HashPassword(password, r.bcryptCost)
	if err != nil {
		return nil, err
	}
	identity := &entity.Identity{
		ID:              uuid.New().String(),
		Email:           entity.NormalizeEmail(email),
		CredentialState: entity.CredentialVerified,
	}
	const query = `INSERT INTO identities (id, email, password_hash) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, identity.ID, identity.Email, hash); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("identities.CreateIdentity: %w", err)
	}
	return identity, nil
}

// SendCredentialReset genera un token de un solo uso y lo entrega por el notificador.
func (r *IdentityRepo) SendCredentialReset(ctx context.Context, email string) error {
	const query = `SELECT id, email FROM identities WHERE email = $1`
	var id, stored string
	if err := r.pool.QueryRow(ctx, query, entity.NormalizeEmail(email)).Scan(&id, &stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reset %s: %w", email, domain.ErrNotFound)
		}
		return fmt.Errorf("identities.SendCredentialReset: %w", err)
	}
	token, err := credential.NewResetToken()
	if err != nil {
		return fmt.Errorf("generar token: %w", err)
	}
	if err := r.resetTokens.Save(ctx, token, id, r.resetTTL); err != nil {
		return fmt.Errorf("guardar token: %w", err)
	}
	return r.notifier.NotifyReset(ctx, stored, token)
}

// ConfirmCredentialReset consume el token y reemplaza el hash.
func (r *IdentityRepo) ConfirmCredentialReset(ctx context.Context, token, newPassword string) error {
	identityID, err := r.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := credential.HashPassword(newPassword, r.bcryptCost)
	if err != nil {
		return err
	}
	const query = `UPDATE identities SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, identityID, hash)
	if err != nil {
		return fmt.Errorf("identities.ConfirmCredentialReset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoteStore une documentos y credenciales en un único repository.RemoteStore.
type RemoteStore struct {
	*DocumentRepo
	*IdentityRepo
}

var _ repository.RemoteStore = RemoteStore{}

package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/credential"
)

type identityRecord struct {
	id           string
	email        string
	passwordHash string
}

// Authenticate verifica email/password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*entity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rec, ok := s.identities[entity.NormalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := credential.CheckPassword(rec.passwordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return rec.identity(), nil
}

// CreateIdentity registra una identidad nueva.
func (s *Store) CreateIdentity(ctx context.Context, email, password string) (*entity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := entity.NormalizeEmail(email)
	hash, err := credential.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[key]; exists {
		return nil, domain.ErrDuplicateIdentity
	}
	rec := &identityRecord{id: uuid.New().String(), email: key, passwordHash: hash}
	s.identities[key] = rec
	s.byID[rec.id] = rec
	return rec.identity(), nil
}

// SendCredentialReset genera un token de un solo uso y lo entrega por el notificador.
func (s *Store) SendCredentialReset(ctx context.Context, email string) error {
	s.mu.RLock()
	rec, ok := s.identities[entity.NormalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("reset %s: %w", email, domain.ErrNotFound)
	}
	token, err := credential.NewResetToken()
	if err != nil {
		return fmt.Errorf("generar token: %w", err)
	}
	if err := s.resetTokens.Save(ctx, token, rec.id, s.resetTTL); err != nil {
		return fmt.Errorf("guardar token: %w", err)
	}
	return s.notifier.NotifyReset(ctx, rec.email, token)
}

// ConfirmCredentialReset consume el token y reemplaza la contraseña.
func (s *Store) ConfirmCredentialReset(ctx context.Context, token, newPassword string) error {
	identityID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := credential.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[identityID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.passwordHash = hash
	return nil
}

func (r *identityRecord) identity() *entity.Identity {
	return &entity.Identity{ID: r.id, Email: r.email, CredentialState: entity.CredentialVerified}
}

var _ repository.ResetTokenRepository = (*ResetTokens)(nil)

// ResetTokens repositorio de tokens en memoria con expiración perezosa.
type ResetTokens struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
	now    func() time.Time
}

type resetEntry struct {
	identityID string
	expiresAt  time.Time
}

// NewResetTokens construye el repositorio en memoria.
func NewResetTokens(now func() time.Time) *ResetTokens {
	if now == nil {
		now = time.Now
	}
	return &ResetTokens{tokens: make(map[string]resetEntry), now: now}
}

// Save guarda el token con su TTL.
func (r *ResetTokens) Save(_ context.Context, token, identityID string, ttl time.Duration) error {
	if token == "" {
		return errors.New("token vacío")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = resetEntry{identityID: identityID, expiresAt: r.now().Add(ttl)}
	return nil
}

// Consume devuelve el dueño del token y lo elimina.
func (r *ResetTokens) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tokens[token]
	delete(r.tokens, token)
	if !ok || !r.now().Before(e.expiresAt) {
		return "", domain.ErrNotFound
	}
	return e.identityID, nil
}

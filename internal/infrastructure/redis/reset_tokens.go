// Package redis guarda los tokens de restablecimiento de contraseña en Redis con TTL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

const keyPrefix = "amlak:reset:"

// commands subconjunto de redis.Cmdable que usa el repositorio.
type commands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	GetDel(ctx context.Context, key string) *goredis.StringCmd
}

var _ repository.ResetTokenRepository = (*ResetTokens)(nil)

// ResetTokens implementa repository.ResetTokenRepository.
// El token se consume con GETDEL: un segundo uso no encuentra la clave.
type ResetTokens struct {
	client commands
}

// NewResetTokens construye el repositorio sobre un cliente ya conectado.
func NewResetTokens(client goredis.Cmdable) *ResetTokens {
	return &ResetTokens{client: client}
}

// Save guarda token → identityID con expiración ttl.
func (r *ResetTokens) Save(ctx context.Context, token, identityID string, ttl time.Duration) error {
	if token == "" || identityID == "" {
		return fmt.Errorf("reset token: %w", domain.ErrInvalidInput)
	}
	if err := r.client.Set(ctx, keyPrefix+token, identityID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set reset token: %w", err)
	}
	return nil
}

// Consume devuelve el identityID y borra el token. domain.ErrNotFound si no existe o expiró.
func (r *ResetTokens) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNotFound
	}
	id, err := r.client.GetDel(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("redis getdel reset token: %w", err)
	}
	return id, nil
}

// Options parámetros de conexión.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect crea el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

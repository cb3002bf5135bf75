// Package credential reúne el hashing de contraseñas y los tokens de restablecimiento
// que comparten los adaptadores de credenciales (memoria y PostgreSQL).
package credential

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword genera el hash bcrypt con el costo indicado (0 = bcrypt.DefaultCost).
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compara una contraseña con su hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// NewResetToken token aleatorio de 32 bytes, seguro para URLs.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Notifier entrega el token de restablecimiento al usuario (email, SMS...).
type Notifier interface {
	NotifyReset(ctx context.Context, email, token string) error
}

// LogNotifier escribe el token en el log. Solo para desarrollo: no hay servidor de correo.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador de desarrollo.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyReset registra el enlace de restablecimiento.
func (n *LogNotifier) NotifyReset(_ context.Context, email, token string) error {
	n.log.Info().
		Str("email", email).
		Str("reset_token", token).
		Msg("enlace de restablecimiento de contraseña generado")
	return nil
}

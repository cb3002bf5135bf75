package entity

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Los documentos llegan del almacén remoto como mapas genéricos; según el adaptador
// un timestamp puede ser time.Time (memoria) o string RFC3339 (JSONB).

func str(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func timeField(f map[string]any, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decimalField(f map[string]any, key string) decimal.Decimal {
	switch v := f[key].(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

var emailFolder = cases.Fold()

// NormalizeEmail recorta espacios y pliega mayúsculas para comparar emails.
func NormalizeEmail(email string) string {
	return emailFolder.String(strings.TrimSpace(email))
}

// ValidateEmail verifica que el email tenga formato de dirección simple (sin nombre).
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email requerido")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email con formato inválido")
	}
	return nil
}

// MinPasswordLength longitud mínima aceptada por el proveedor de credenciales.
const MinPasswordLength = 6

// ValidatePassword aplica la política mínima de contraseñas.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("la contraseña debe tener al menos %d caracteres", MinPasswordLength)
	}
	return nil
}

// ValidatePhone acepta dígitos con separadores comunes y un '+' inicial opcional.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return fmt.Errorf("teléfono con caracteres inválidos")
		}
	}
	if digits < 7 || digits > 15 {
		return fmt.Errorf("el teléfono debe tener entre 7 y 15 dígitos")
	}
	return nil
}

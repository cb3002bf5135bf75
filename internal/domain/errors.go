package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Sesión y credenciales.
	ErrInvalidCredentials = errors.New("email o contraseña incorrectos")
	ErrDuplicateIdentity  = errors.New("el email ya está registrado")
	ErrProfileNotFound    = errors.New("perfil de usuario no encontrado")
	ErrRoleMismatch       = errors.New("el rol seleccionado no coincide con el rol registrado")
	ErrValidation         = ErrInvalidInput

	// Sincronización y escrituras.
	ErrSync        = errors.New("error en el canal de sincronización")
	ErrWriteFailed = errors.New("no se pudo guardar la información")
)

// UserMessage traduce un error a un mensaje apto para mostrar al usuario.
// Los errores no clasificados se devuelven con un mensaje genérico.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Email o contraseña incorrectos."
	case errors.Is(err, ErrDuplicateIdentity):
		return "Error en el registro. Es posible que este email ya esté en uso."
	case errors.Is(err, ErrProfileNotFound):
		return "Perfil de usuario no encontrado."
	case errors.Is(err, ErrRoleMismatch):
		return "El rol seleccionado no coincide con el rol registrado en el sistema."
	case errors.Is(err, ErrValidation):
		return "Datos inválidos: " + err.Error()
	case errors.Is(err, ErrSync):
		return "Se perdió la conexión con los datos en vivo. Intente de nuevo."
	case errors.Is(err, ErrWriteFailed):
		return "Error al guardar la información."
	case errors.Is(err, ErrForbidden):
		return "No tiene permiso para realizar esta acción."
	case errors.Is(err, ErrNotFound):
		return "El recurso solicitado no existe."
	default:
		return "Error interno. Intente más tarde."
	}
}

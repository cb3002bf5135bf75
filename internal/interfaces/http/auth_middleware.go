package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/workspace"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/pkg/jwt"
)

// Locals keys para la sesión en Fiber.
const (
	LocalSessionID = "session_id"
	LocalWorkspace = "workspace"
)

// AuthMiddleware valida el Bearer Token JWT de sesión y carga el workspace en c.Locals.
// Una sesión desalojada del registro responde 401 SESSION_EXPIRED.
func AuthMiddleware(jwtSecret, issuer string, sessions *SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// EventSource no permite cabeceras: el stream acepta ?access_token=
			if q := c.Query("access_token"); q != "" {
				authHeader = "Bearer " + q
			}
		}
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		sessionID, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		ws, ok := sessions.Get(sessionID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "SESSION_EXPIRED", Message: "la sesión ya no existe; cree una nueva"})
		}
		c.Locals(LocalSessionID, sessionID)
		c.Locals(LocalWorkspace, ws)
		return c.Next()
	}
}

// GetSessionID devuelve el ID de sesión del contexto (después del middleware de auth).
func GetSessionID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionID).(string)
	return s
}

// GetWorkspace devuelve el workspace de la sesión (después del middleware de auth).
func GetWorkspace(c *fiber.Ctx) *workspace.Workspace {
	ws, _ := c.Locals(LocalWorkspace).(*workspace.Workspace)
	return ws
}

// GetPrincipal quién actúa en la sesión; false si no hay identidad ni demo.
func GetPrincipal(c *fiber.Ctx) (entity.Principal, bool) {
	ws := GetWorkspace(c)
	if ws == nil {
		return entity.Principal{}, false
	}
	return ws.Session().Principal()
}

// scopeOf dueño de los datos que muestra la vista activa: el usuario gestionado
// si un admin está viendo otro perfil, si no el propio principal.
func scopeOf(c *fiber.Ctx, p entity.Principal) string {
	if ws := GetWorkspace(c); ws != nil {
		if v := ws.View(); v.Scope != "" && v.Owner == p.ID {
			return v.Scope
		}
	}
	return p.ID
}

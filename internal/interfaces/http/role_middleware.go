package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// RequirePrincipal exige una identidad activa (autenticada o demo).
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalWorkspace).
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetPrincipal(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "NOT_SIGNED_IN",
				Message: "inicie sesión primero",
			})
		}
		return c.Next()
	}
}

// RequireRole devuelve un middleware Fiber que verifica que el rol de la sesión sea uno de roles.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → la sesión no tiene identidad.
//   - 403 Forbidden    → rol no incluido, o sesión demo (nunca pasa).
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "NOT_SIGNED_IN",
				Message: "inicie sesión primero",
			})
		}
		if !p.Demo {
			for _, r := range roles {
				if p.Role == r {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "el rol '" + p.Role.String() + "' no tiene acceso a este recurso",
		})
	}
}

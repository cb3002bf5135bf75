package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
)

// PropertyHandler inmuebles del usuario en el ámbito de la vista activa.
type PropertyHandler struct {
	uc *usecase.PropertyUseCase
}

// NewPropertyHandler construye el handler.
func NewPropertyHandler(uc *usecase.PropertyUseCase) *PropertyHandler {
	return &PropertyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear inmueble
// @Description  El dueño es el usuario de la vista activa: el propio o, para un admin, el usuario gestionado.
// @Tags         properties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePropertyRequest  true  "Datos del inmueble"
// @Success      201   {object}  dto.PropertyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	var in dto.CreatePropertyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), actor, scopeOf(c, actor), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar inmuebles
// @Description  Inmuebles del usuario de la vista activa, más recientes primero.
// @Tags         properties
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   dto.PropertyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	out, err := h.uc.List(c.UserContext(), actor, scopeOf(c, actor))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
)

// ProfileHandler perfil del usuario de la vista activa.
type ProfileHandler struct {
	uc *usecase.UserUseCase
}

// NewProfileHandler construye el handler.
func NewProfileHandler(uc *usecase.UserUseCase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// Get godoc
// @Summary      Ver perfil
// @Tags         profile
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ProfileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	out, err := h.uc.GetProfile(c.UserContext(), actor, scopeOf(c, actor))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar perfil
// @Description  Solo campos personales: full_name, phone_number, job y location.
// @Tags         profile
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateProfileRequest  true  "Campos personales"
// @Success      200   {object}  dto.ProfileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), actor, scopeOf(c, actor), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

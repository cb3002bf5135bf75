package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/amlak-api/internal/application/analytics"
)

// AnalyticsHandler maneja los endpoints de analítica.
type AnalyticsHandler struct {
	uc *appanalytics.SummaryUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.SummaryUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de actividad
// @Description  Inmuebles por tipo con área total y logins/logouts de los últimos 30 días.
// @Description  Para admin el alcance es global e incluye usuarios por rol y leads de demo por rol.
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.AnalyticsSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	summary, err := h.uc.GetSummary(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

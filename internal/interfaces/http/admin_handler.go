package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/report"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
)

// AdminHandler panel de administración: usuarios y reporte de cartera.
type AdminHandler struct {
	users   *usecase.UserUseCase
	reports *report.ReportUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(users *usecase.UserUseCase, reports *report.ReportUseCase) *AdminHandler {
	return &AdminHandler{users: users, reports: reports}
}

// ListUsers godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.UserListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.users.ListUsers(c.UserContext(), actor, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PortfolioPDF godoc
// @Summary      Reporte de cartera en PDF
// @Description  Usuarios con su cantidad de inmuebles y área total.
// @Tags         admin
// @Security     BearerAuth
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/admin/report.pdf [get]
func (h *AdminHandler) PortfolioPDF(c *fiber.Ctx) error {
	actor, _ := GetPrincipal(c)
	pdf, err := h.reports.PortfolioPDF(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "cartera.pdf"))
	return c.Send(pdf)
}

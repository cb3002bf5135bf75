package http

import (
	"bufio"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/view"
	"github.com/jhoicas/amlak-api/internal/application/workspace"
)

const streamKeepAlive = 20 * time.Second

// ViewHandler estado de la sesión, navegación y stream de la vista activa.
type ViewHandler struct {
	log       zerolog.Logger
	keepAlive time.Duration
}

// NewViewHandler construye el handler.
func NewViewHandler(log zerolog.Logger) *ViewHandler {
	return &ViewHandler{log: log, keepAlive: streamKeepAlive}
}

// GetState godoc
// @Summary      Estado de la sesión
// @Description  Estado de la sesión, vista activa y, en el tablero, el layout del rol.
// @Tags         view
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StateResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/state [get]
func (h *ViewHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(currentState(c))
}

// Navigate godoc
// @Summary      Navegar
// @Description  Acciones: dashboard, profile, admin, manage_user (target = ID del usuario) y end_demo.
// @Description  Una acción no permitida para el rol conserva la vista actual.
// @Tags         view
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.NavigateRequest  true  "action, target"
// @Success      200   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/view/navigate [post]
func (h *ViewHandler) Navigate(c *fiber.Ctx) error {
	var in dto.NavigateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	kind, ok := view.ParseAction(in.Action)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "acción desconocida: " + in.Action})
	}
	ws := GetWorkspace(c)
	if kind == view.EndDemo {
		// terminar la demo es un cambio de sesión; la vista se recalcula al publicarse
		ws.Session().EndDemo(c.UserContext())
	} else {
		ws.Navigate(c.UserContext(), view.Action{Kind: kind, Target: in.Target})
	}
	return c.JSON(currentState(c))
}

// Refresh godoc
// @Summary      Reconectar la vista
// @Description  Vuelve a suscribir los datos de la vista activa, por ejemplo tras un error de sincronización.
// @Tags         view
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StateResponse
// @Router       /api/view/refresh [post]
func (h *ViewHandler) Refresh(c *fiber.Ctx) error {
	GetWorkspace(c).Refresh(c.UserContext())
	return c.JSON(currentState(c))
}

// Stream godoc
// @Summary      Stream de la vista activa
// @Description  Server-sent events. Cada evento "workspace" trae el estado visible completo (dto.WorkspaceEventDTO).
// @Description  Un solo stream por sesión; el token también se acepta como ?access_token=.
// @Tags         view
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {object}  dto.WorkspaceEventDTO
// @Router       /api/stream [get]
func (h *ViewHandler) Stream(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	encode := c.App().Config().JSONEncoder
	log := h.log.With().Str("session_id", ws.ID()).Logger()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.keepAlive
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		var sent uint64
		first := true
		push := func() error {
			snap := ws.Current()
			if !first && snap.Version == sent {
				return nil
			}
			first = false
			sent = snap.Version
			return writeEvent(w, encode, snap)
		}

		if err := push(); err != nil {
			return
		}
		changes := ws.Changes()
		for {
			select {
			case _, ok := <-changes:
				if !ok {
					log.Debug().Msg("workspace cerrado; fin del stream")
					return
				}
				if err := push(); err != nil {
					log.Debug().Err(err).Msg("cliente desconectado")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug().Err(err).Msg("cliente desconectado")
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, encode func(any) ([]byte, error), snap workspace.Snapshot) error {
	payload, err := encode(toWorkspaceEvent(snap))
	if err != nil {
		return err
	}
	w.WriteString("id: " + strconv.FormatUint(snap.Version, 10) + "\n")
	w.WriteString("event: workspace\n")
	w.WriteString("data: ")
	w.Write(payload)
	w.WriteString("\n\n")
	return w.Flush()
}

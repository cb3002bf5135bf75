package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/pkg/jwt"
)

// SessionHandler alta y baja de sesiones del BFF.
type SessionHandler struct {
	sessions   *SessionRegistry
	jwtSecret  string
	issuer     string
	expMinutes int
	log        zerolog.Logger
}

// NewSessionHandler construye el handler de sesiones.
func NewSessionHandler(sessions *SessionRegistry, jwtSecret, issuer string, expMinutes int, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, jwtSecret: jwtSecret, issuer: issuer, expMinutes: expMinutes, log: log}
}

// Create godoc
// @Summary      Abrir sesión
// @Description  Crea un workspace sin identidad y devuelve su token. El resto de la API se usa con este token.
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  dto.SessionResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	ws := h.sessions.Create(c.UserContext())
	token, exp, err := jwt.Generate(h.jwtSecret, ws.ID(), h.issuer, h.expMinutes)
	if err != nil {
		h.sessions.Remove(ws.ID())
		h.log.Error().Err(err).Msg("no se pudo firmar el token de sesión")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo crear la sesión"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{Token: token, SessionID: ws.ID(), ExpiresAt: exp})
}

// Close godoc
// @Summary      Cerrar sesión
// @Description  Libera el workspace y sus suscripciones. El token deja de ser válido.
// @Tags         sessions
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/sessions [delete]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	h.sessions.Remove(GetSessionID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// AuthHandler registro, login, logout, restablecimiento de contraseña y demo sobre la sesión del token.
type AuthHandler struct{}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Register godoc
// @Summary      Registrar usuario
// @Description  Crea la identidad y el perfil con el rol elegido (landlord, tenant, seller o buyer) y deja la sesión autenticada.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RegisterRequest  true  "email, password, role"
// @Success      201   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok || !role.Selectable() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "role debe ser landlord, tenant, seller o buyer"})
	}
	ws := GetWorkspace(c)
	if err := ws.Session().Register(c.UserContext(), in.Email, in.Password, role); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(currentState(c))
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Autentica y comprueba que el rol declarado coincide con el del perfil. Un admin puede declarar cualquier rol.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.LoginRequest  true  "email, password, role"
// @Success      200   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol desconocido"})
	}
	ws := GetWorkspace(c)
	if err := ws.Session().Login(c.UserContext(), in.Email, in.Password, role); err != nil {
		return writeError(c, err)
	}
	return c.JSON(currentState(c))
}

// Logout godoc
// @Summary      Cerrar la identidad
// @Description  Registra la salida y vuelve al login. Nunca falla. La sesión del token sigue abierta.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StateResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	GetWorkspace(c).Session().Logout(c.UserContext())
	return c.JSON(currentState(c))
}

// PasswordReset godoc
// @Summary      Solicitar restablecimiento de contraseña
// @Description  Envía el enlace fuera de banda. El resultado siempre es 200 con success/error.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      200   {object}  dto.ResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) PasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res := GetWorkspace(c).Session().ResetPassword(c.UserContext(), in.Email)
	return c.JSON(dto.ResultResponse{Success: res.Success, Error: res.Error})
}

// ConfirmPasswordReset godoc
// @Summary      Confirmar restablecimiento de contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PasswordResetConfirmRequest  true  "token, new_password"
// @Success      200   {object}  dto.ResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res := GetWorkspace(c).Session().ConfirmPasswordReset(c.UserContext(), in.Token, in.NewPassword)
	return c.JSON(dto.ResultResponse{Success: res.Success, Error: res.Error})
}

// StartDemo godoc
// @Summary      Iniciar demo
// @Description  Entra en modo demo de solo lectura con el rol elegido y registra el teléfono como lead.
// @Tags         demo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.DemoRequest  true  "phone_number, role"
// @Success      200   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/demo/start [post]
func (h *AuthHandler) StartDemo(c *fiber.Ctx) error {
	var in dto.DemoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return writeError(c, domain.ErrValidation)
	}
	if err := GetWorkspace(c).Session().StartDemo(c.UserContext(), in.PhoneNumber, role); err != nil {
		return writeError(c, err)
	}
	return c.JSON(currentState(c))
}

// EndDemo godoc
// @Summary      Terminar demo
// @Tags         demo
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StateResponse
// @Router       /api/demo/end [post]
func (h *AuthHandler) EndDemo(c *fiber.Ctx) error {
	GetWorkspace(c).Session().EndDemo(c.UserContext())
	return c.JSON(currentState(c))
}

func currentState(c *fiber.Ctx) dto.StateResponse {
	s := GetWorkspace(c).Current()
	return toStateResponse(s.Session, s.View, s.Layout)
}

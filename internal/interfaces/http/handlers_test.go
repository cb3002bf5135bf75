package http_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Registro, login y tablero
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_LandlordVeSuTableroYGestionaInmuebles(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", auth, dto.RegisterRequest{Email: "Ana@X.com", Password: "pw123456", Role: "landlord"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	st := decode[dto.StateResponse](t, resp)
	assert.Equal(t, "authenticated", st.Status)
	assert.Equal(t, "ana@x.com", st.Email)
	assert.Equal(t, "landlord", st.Role)
	assert.Equal(t, "dashboard", st.View.Tag)
	assert.Equal(t, st.IdentityID, st.View.Scope)
	require.NotNil(t, st.Layout)
	assert.Equal(t, "landlord", st.Layout.Role)
	assert.False(t, st.Layout.AdminEntry)

	resp = env.do(t, http.MethodPost, "/api/properties", auth, dto.CreatePropertyRequest{
		PropertyType: "villa", Address: "calle 1", AreaSqm: decimal.RequireFromString("120.5"),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.PropertyResponse](t, resp)
	assert.Equal(t, st.IdentityID, created.OwnerID)

	resp = env.do(t, http.MethodGet, "/api/properties", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.PropertyResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "villa", list[0].PropertyType)
	assert.True(t, decimal.RequireFromString("120.5").Equal(list[0].AreaSqm))

	resp = env.do(t, http.MethodGet, "/api/analytics/summary", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.AnalyticsSummaryDTO](t, resp)
	assert.Equal(t, "own", summary.Scope)
	assert.Equal(t, 1, summary.TotalProperties)

	resp = env.do(t, http.MethodGet, "/api/admin/users", auth, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegister_RolAdminNoSeAsigna(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", auth, dto.RegisterRequest{Email: "a@x.com", Password: "pw123456", Role: "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_EmailDuplicado_Retorna409(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "dup@x.com", entity.RoleTenant)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", auth, dto.RegisterRequest{Email: "dup@x.com", Password: "pw123456", Role: "buyer"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", decode[dto.ErrorResponse](t, resp).Code)
}

func TestLogin_Errores(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "s@x.com", entity.RoleSeller)

	tests := []struct {
		name   string
		in     dto.LoginRequest
		status int
		code   string
	}{
		{"contraseña incorrecta", dto.LoginRequest{Email: "s@x.com", Password: "otra-clave", Role: "seller"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"rol que no coincide", dto.LoginRequest{Email: "s@x.com", Password: "pw123456", Role: "buyer"}, http.StatusForbidden, "ROLE_MISMATCH"},
		{"sin rol", dto.LoginRequest{Email: "s@x.com", Password: "pw123456"}, http.StatusForbidden, "ROLE_MISMATCH"},
		{"sin email", dto.LoginRequest{Password: "pw123456", Role: "seller"}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := env.openSession(t)
			resp := env.do(t, http.MethodPost, "/api/auth/login", auth, tt.in)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, resp).Code)

			st := decode[dto.StateResponse](t, env.do(t, http.MethodGet, "/api/state", auth, nil))
			assert.Equal(t, "unauthenticated", st.Status)
			assert.Equal(t, "login", st.View.Tag)
			assert.NotEmpty(t, st.LastError)
		})
	}
}

func TestLogout_VuelveAlLogin(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "b@x.com", entity.RoleBuyer)
	auth := env.openSession(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/login", auth, dto.LoginRequest{Email: "b@x.com", Password: "pw123456", Role: "buyer"}).StatusCode)

	st := decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/auth/logout", auth, nil))
	assert.Equal(t, "unauthenticated", st.Status)
	assert.Equal(t, "login", st.View.Tag)
	assert.Nil(t, st.Layout)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restablecimiento de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestPasswordReset_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "r@x.com", entity.RoleTenant)
	auth := env.openSession(t)

	res := decode[dto.ResultResponse](t, env.do(t, http.MethodPost, "/api/auth/password-reset", auth, dto.PasswordResetRequest{Email: "R@x.com"}))
	require.True(t, res.Success, res.Error)
	token := env.notifier.token("r@x.com")
	require.NotEmpty(t, token)

	res = decode[dto.ResultResponse](t, env.do(t, http.MethodPost, "/api/auth/password-reset/confirm", auth, dto.PasswordResetConfirmRequest{Token: token, NewPassword: "nueva-clave"}))
	require.True(t, res.Success, res.Error)

	// el token es de un solo uso
	res = decode[dto.ResultResponse](t, env.do(t, http.MethodPost, "/api/auth/password-reset/confirm", auth, dto.PasswordResetConfirmRequest{Token: token, NewPassword: "otra-clave"}))
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	resp := env.do(t, http.MethodPost, "/api/auth/login", auth, dto.LoginRequest{Email: "r@x.com", Password: "nueva-clave", Role: "tenant"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPasswordReset_EmailDesconocido(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/auth/password-reset", auth, dto.PasswordResetRequest{Email: "nadie@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ResultResponse](t, resp)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

// ──────────────────────────────────────────────────────────────────────────────
// Demo
// ──────────────────────────────────────────────────────────────────────────────

func TestDemo_SoloLecturaYFinPorNavegacion(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/demo/start", auth, dto.DemoRequest{PhoneNumber: "0501234567", Role: "seller"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.StateResponse](t, resp)
	assert.True(t, st.Demo)
	assert.Equal(t, "demo_active", st.Status)
	assert.True(t, st.View.ReadOnly)
	require.NotNil(t, st.Layout)
	assert.Equal(t, "seller", st.Layout.Role)

	resp = env.do(t, http.MethodPost, "/api/properties", auth, dto.CreatePropertyRequest{
		PropertyType: "store", Address: "calle 9", AreaSqm: decimal.NewFromInt(40),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// una segunda demo sin cerrar la actual es un conflicto
	resp = env.do(t, http.MethodPost, "/api/demo/start", auth, dto.DemoRequest{PhoneNumber: "0501234567", Role: "buyer"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	st = decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/view/navigate", auth, dto.NavigateRequest{Action: "end_demo"}))
	assert.Equal(t, "unauthenticated", st.Status)
	assert.Equal(t, "login", st.View.Tag)
	assert.False(t, st.Demo)
}

func TestDemo_TelefonoInvalido_Retorna400(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/demo/start", auth, dto.DemoRequest{PhoneNumber: "abc", Role: "seller"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración
// ──────────────────────────────────────────────────────────────────────────────

func TestAdmin_GestionaOtroUsuario(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "root@x.com", entity.RoleAdmin)
	tenantID := env.seedUser(t, "t@x.com", entity.RoleTenant)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", auth, dto.LoginRequest{Email: "root@x.com", Password: "pw123456", Role: "landlord"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.StateResponse](t, resp)
	assert.Equal(t, "admin", st.Role)
	require.NotNil(t, st.Layout)
	assert.True(t, st.Layout.AdminEntry)

	st = decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/view/navigate", auth, dto.NavigateRequest{Action: "manage_user", Target: tenantID}))
	assert.Equal(t, "profile", st.View.Tag)
	assert.Equal(t, tenantID, st.View.Scope)
	assert.True(t, st.View.Impersonating)

	profile := decode[dto.ProfileResponse](t, env.do(t, http.MethodGet, "/api/profile", auth, nil))
	assert.Equal(t, "t@x.com", profile.Email)

	resp = env.do(t, http.MethodPut, "/api/profile", auth, dto.UpdateProfileRequest{FullName: "Tomás", Location: "Dubai"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile = decode[dto.ProfileResponse](t, resp)
	assert.Equal(t, "Tomás", profile.FullName)
	assert.Equal(t, "tenant", profile.Role)

	resp = env.do(t, http.MethodPost, "/api/properties", auth, dto.CreatePropertyRequest{
		PropertyType: "apartment", Address: "torre 2", AreaSqm: decimal.NewFromInt(85),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, tenantID, decode[dto.PropertyResponse](t, resp).OwnerID)

	resp = env.do(t, http.MethodGet, "/api/admin/users?limit=1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[dto.UserListResponse](t, resp)
	assert.Len(t, users.Items, 1)
	assert.Equal(t, 2, users.Page.Total)

	resp = env.do(t, http.MethodGet, "/api/admin/report.pdf", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))

	summary := decode[dto.AnalyticsSummaryDTO](t, env.do(t, http.MethodGet, "/api/analytics/summary", auth, nil))
	assert.Equal(t, "global", summary.Scope)
	assert.Equal(t, 1, summary.UsersByRole["tenant"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación y stream
// ──────────────────────────────────────────────────────────────────────────────

func TestNavigate_AccionDesconocida_Retorna400(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodPost, "/api/view/navigate", auth, dto.NavigateRequest{Action: "volar"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigate_TenantNoAbreElPanelAdmin(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "t@x.com", entity.RoleTenant)
	auth := env.openSession(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/login", auth, dto.LoginRequest{Email: "t@x.com", Password: "pw123456", Role: "tenant"}).StatusCode)

	st := decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/view/navigate", auth, dto.NavigateRequest{Action: "admin"}))
	assert.Equal(t, "dashboard", st.View.Tag)

	st = decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/view/navigate", auth, dto.NavigateRequest{Action: "profile"}))
	assert.Equal(t, "profile", st.View.Tag)
	assert.False(t, st.View.Impersonating)

	st = decode[dto.StateResponse](t, env.do(t, http.MethodPost, "/api/view/refresh", auth, nil))
	assert.Equal(t, "profile", st.View.Tag)
}

func TestStream_EnviaElEstadoVisible(t *testing.T) {
	env := newTestEnv(t, 8)
	resp := env.do(t, http.MethodPost, "/api/sessions", "", nil)
	sess := decode[dto.SessionResponse](t, resp)
	auth := "Bearer " + sess.Token
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/auth/register", auth, dto.RegisterRequest{Email: "e@x.com", Password: "pw123456", Role: "buyer"}).StatusCode)

	// con el workspace cerrado el stream envía el último estado y termina
	ws, ok := env.sessions.Get(sess.SessionID)
	require.True(t, ok)
	ws.Close()

	resp = env.do(t, http.MethodGet, "/api/stream?access_token="+sess.Token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event: workspace")
	assert.Contains(t, string(body), `"tag":"dashboard"`)
	assert.Contains(t, string(body), `"email":"e@x.com"`)
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/amlak-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	env := newTestEnv(t, 8)
	resp := env.do(t, http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	env := newTestEnv(t, 8)
	resp := env.do(t, http.MethodGet, "/api/state", "Bearer token.invalido.aqui", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodGet, "/api/state", "Basic abc", nil)
	assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_SecretIncorrecto_Retorna401(t *testing.T) {
	env := newTestEnv(t, 8)
	tok, _, err := pkgjwt.Generate("otro-secret-completamente-distinto", "s1", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/state", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_SesionInexistente_Retorna401(t *testing.T) {
	env := newTestEnv(t, 8)
	tok, _, err := pkgjwt.Generate(testJWTSecret, "no-existe", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/state", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_EXPIRED", decode[dto.ErrorResponse](t, resp).Code)
}

// Al superar la capacidad del registro se desaloja la sesión menos usada.
func TestAuthMiddleware_SesionDesalojada_Retorna401(t *testing.T) {
	env := newTestEnv(t, 1)
	first := env.openSession(t)
	second := env.openSession(t)

	resp := env.do(t, http.MethodGet, "/api/state", first, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_EXPIRED", decode[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodGet, "/api/state", second, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.sessions.Len())
}

func TestSessions_CerrarInvalidaElToken(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodDelete, "/api/sessions", auth, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/state", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePrincipal / RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePrincipal_SinIdentidad_Retorna401(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)

	resp := env.do(t, http.MethodGet, "/api/properties", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NOT_SIGNED_IN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRequireRole_TenantBloqueadoEnRutaAdmin(t *testing.T) {
	env := newTestEnv(t, 8)
	env.seedUser(t, "t@x.com", entity.RoleTenant)
	auth := env.openSession(t)
	resp := env.do(t, http.MethodPost, "/api/auth/login", auth, dto.LoginRequest{Email: "t@x.com", Password: "pw123456", Role: "tenant"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/users", auth, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRequireRole_DemoNuncaPasa(t *testing.T) {
	env := newTestEnv(t, 8)
	auth := env.openSession(t)
	resp := env.do(t, http.MethodPost, "/api/demo/start", auth, dto.DemoRequest{PhoneNumber: "0501234567", Role: "landlord"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/report.pdf", auth, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/amlak-api/internal/application/analytics"
	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/realtime"
	"github.com/jhoicas/amlak-api/internal/application/report"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
	infrapdf "github.com/jhoicas/amlak-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/amlak-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "amlak-api-test"
	testExpMin    = 60
)

// captureNotifier guarda el último token de restablecimiento por email.
type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *captureNotifier) NotifyReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[email] = token
	return nil
}

func (n *captureNotifier) token(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

type testEnv struct {
	app      *fiber.App
	mem      *memstore.Store
	sessions *apphttp.SessionRegistry
	notifier *captureNotifier
}

// newTestEnv construye la API completa sobre el almacén en memoria.
func newTestEnv(t *testing.T, cacheSize int) *testEnv {
	t.Helper()
	notifier := &captureNotifier{tokens: map[string]string{}}
	mem := memstore.New(zerolog.Nop(), memstore.WithBcryptCost(bcrypt.MinCost), memstore.WithNotifier(notifier))
	engine := realtime.NewEngine(mem, zerolog.Nop())
	sessions, err := apphttp.NewSessionRegistry(cacheSize, mem, engine, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		sessions.Close()
		engine.Close()
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Sessions:      sessions,
		UserUC:        usecase.NewUserUseCase(mem),
		PropertyUC:    usecase.NewPropertyUseCase(mem),
		AnalyticsUC:   appanalytics.NewSummaryUseCase(mem),
		ReportUC:      report.NewReportUseCase(mem, infrapdf.NewMarotoPDFGenerator()),
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
		JWTExpMinutes: testExpMin,
		Log:           zerolog.Nop(),
	})
	return &testEnv{app: app, mem: mem, sessions: sessions, notifier: notifier}
}

// seedUser crea identidad y perfil directamente en el almacén.
func (e *testEnv) seedUser(t *testing.T, email string, role entity.Role) string {
	t.Helper()
	ctx := context.Background()
	id, err := e.mem.CreateIdentity(ctx, email, "pw123456")
	require.NoError(t, err)
	require.NoError(t, e.mem.Write(ctx, repository.CollectionUsers, id.ID, entity.NewProfile(id, role, time.Now()).Fields()))
	return id.ID
}

// openSession abre una sesión y devuelve el header Authorization.
func (e *testEnv) openSession(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.SessionResponse](t, resp)
	require.NotEmpty(t, out.Token)
	return "Bearer " + out.Token
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

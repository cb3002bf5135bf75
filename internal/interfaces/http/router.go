package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/amlak-api/internal/application/analytics"
	"github.com/jhoicas/amlak-api/internal/application/report"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions      *SessionRegistry
	UserUC        *usecase.UserUseCase
	PropertyUC    *usecase.PropertyUseCase
	AnalyticsUC   *appanalytics.SummaryUseCase
	ReportUC      *report.ReportUseCase
	JWTSecret     string
	JWTIssuer     string
	JWTExpMinutes int
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	auth := AuthMiddleware(deps.JWTSecret, deps.JWTIssuer, deps.Sessions)

	// Sesiones: alta pública, el resto requiere el token de sesión
	sessionHandler := NewSessionHandler(deps.Sessions, deps.JWTSecret, deps.JWTIssuer, deps.JWTExpMinutes, deps.Log)
	api.Post("/sessions", sessionHandler.Create)
	api.Delete("/sessions", auth, sessionHandler.Close)

	authHandler := NewAuthHandler()
	authGroup := api.Group("/auth", auth)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/password-reset", authHandler.PasswordReset)
	authGroup.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	demo := api.Group("/demo", auth)
	demo.Post("/start", authHandler.StartDemo)
	demo.Post("/end", authHandler.EndDemo)

	// Vista activa
	viewHandler := NewViewHandler(deps.Log)
	api.Get("/state", auth, viewHandler.GetState)
	api.Post("/view/navigate", auth, viewHandler.Navigate)
	api.Post("/view/refresh", auth, viewHandler.Refresh)
	api.Get("/stream", auth, viewHandler.Stream)

	// Administración
	adminHandler := NewAdminHandler(deps.UserUC, deps.ReportUC)
	admin := api.Group("/admin", auth, RequireRole(entity.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/report.pdf", adminHandler.PortfolioPDF)

	// Rutas con identidad (autenticada o demo)
	signedIn := api.Group("/", auth, RequirePrincipal())

	profileHandler := NewProfileHandler(deps.UserUC)
	signedIn.Get("/profile", profileHandler.Get)
	signedIn.Put("/profile", profileHandler.Update)

	propertyHandler := NewPropertyHandler(deps.PropertyUC)
	signedIn.Get("/properties", propertyHandler.List)
	signedIn.Post("/properties", propertyHandler.Create)

	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	signedIn.Get("/analytics/summary", analyticsHandler.GetSummary)
}

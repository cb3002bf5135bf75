package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/amlak-api/internal/application/analytics"
	"github.com/jhoicas/amlak-api/internal/application/realtime"
	"github.com/jhoicas/amlak-api/internal/application/report"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/credential"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
	infrapdf "github.com/jhoicas/amlak-api/internal/infrastructure/pdf"
	"github.com/jhoicas/amlak-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/amlak-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/amlak-api/internal/interfaces/http"
	"github.com/jhoicas/amlak-api/pkg/config"
	"github.com/jhoicas/amlak-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		// config.Validate exige JWT_SECRET en production; aquí los tokens no sobreviven a un reinicio
		secret, err := credential.NewResetToken()
		if err != nil {
			log.Fatal().Err(err).Msg("generar JWT_SECRET efímero")
		}
		cfg.JWT.Secret = secret
		log.Warn().Msg("JWT_SECRET vacío; se usa un secreto efímero")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer backend.close()

	engine := realtime.NewEngine(backend.remote, log.Component("realtime"))
	defer engine.Close()

	sessions, err := httpRouter.NewSessionRegistry(cfg.Session.CacheSize, backend.remote, engine, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("registro de sesiones")
	}

	userUC := usecase.NewUserUseCase(backend.remote)
	propertyUC := usecase.NewPropertyUseCase(backend.remote)
	summaryUC := appanalytics.NewSummaryUseCase(backend.analytics)

	// PDF: reporte de cartera del panel de administración
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	reportUC := report.NewReportUseCase(backend.remote, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// sin WriteTimeout: /api/stream mantiene la respuesta abierta
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Amlak API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": sessions.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:      sessions,
		UserUC:        userUC,
		PropertyUC:    propertyUC,
		AnalyticsUC:   summaryUC,
		ReportUC:      reportUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		JWTExpMinutes: cfg.JWT.Expiration,
		Log:           log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// cerrar las sesiones primero termina los streams abiertos
	sessions.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}

// backend almacén remoto y analítica según STORE_DRIVER.
type backend struct {
	remote    repository.RemoteStore
	analytics repository.AnalyticsRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		mem := memstore.New(log.Zerolog())
		return &backend{remote: mem, analytics: mem, close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		return nil, err
	}
	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	var resetTokens repository.ResetTokenRepository
	closeRedis := func() {}
	if cfg.Redis.Addr != "" {
		client, err := infraredis.Connect(ctx, infraredis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			pool.Close()
			return nil, err
		}
		resetTokens = infraredis.NewResetTokens(client)
		closeRedis = func() { _ = client.Close() }
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: tokens de restablecimiento en memoria del proceso")
		resetTokens = memstore.NewResetTokens(time.Now)
	}

	docs := postgres.NewDocumentRepository(pool, log.Component("documents"))
	go docs.Listen(ctx)

	identities := postgres.NewIdentityRepository(pool, resetTokens, credential.NewLogNotifier(log.Component("credentials")), cfg.Redis.ResetTokenTTL)
	return &backend{
		remote:    postgres.RemoteStore{DocumentRepo: docs, IdentityRepo: identities},
		analytics: postgres.NewAnalyticsRepository(pool),
		close: func() {
			closeRedis()
			pool.Close()
		},
	}, nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/application/events"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/report"
	"github.com/jhoicas/Repuestos-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Repuestos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Repuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Repuestos-api/internal/interfaces/http"
	"github.com/jhoicas/Repuestos-api/pkg/config"
	"github.com/jhoicas/Repuestos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	partRepo := postgres.NewPartRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	dashRepo := postgres.NewDashboardRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	broadcaster := events.NewBroadcaster()

	documentUC := inventory.NewDocumentUseCase(txRunner, docRepo, partRepo, broadcaster, log.Component("documents"))
	adjustUC := inventory.NewAdjustmentUseCase(txRunner, broadcaster, log.Component("adjustments"))
	projector := inventory.NewStockProjector(partRepo, movRepo)

	partUC := usecase.NewPartUseCase(partRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	movementUC := usecase.NewMovementUseCase(movRepo, partRepo)
	dashboardUC := usecase.NewDashboardUseCase(dashRepo)

	pdfGenerator := infrapdf.NewMarotoReportGenerator()
	reportUC := report.NewReportUseCase(movRepo, partRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if cfg.Rate.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Rate.Max,
			Expiration: time.Duration(cfg.Rate.WindowSecs) * time.Second,
		}))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Repuestos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		PartUC:      partUC,
		UserUC:      userUC,
		MovementUC:  movementUC,
		DashboardUC: dashboardUC,
		DocumentUC:  documentUC,
		AdjustUC:    adjustUC,
		ReportUC:    reportUC,
		Projector:   projector,
		Broadcaster: broadcaster,
		UserRepo:    userRepo,
		JWTSecret:   cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

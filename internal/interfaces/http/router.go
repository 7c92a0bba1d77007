package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/application/events"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/report"
	"github.com/jhoicas/Repuestos-api/internal/application/usecase"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/permission"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	PartUC      *usecase.PartUseCase
	UserUC      *usecase.UserUseCase
	MovementUC  *usecase.MovementUseCase
	DashboardUC *usecase.DashboardUseCase
	DocumentUC  *inventory.DocumentUseCase
	AdjustUC    *inventory.AdjustmentUseCase
	ReportUC    *report.ReportUseCase
	Projector   *inventory.StockProjector
	Broadcaster *events.Broadcaster
	UserRepo    repository.UserRepository
	JWTSecret   string
}

// Router registra las rutas de la API. Cada ruta protegida declara el permiso
// que exige; el orquestador re-verifica el permiso dentro de la transacción.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público, registro reservado a administración de usuarios
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret),
		RequirePermission(deps.UserRepo, permission.ManageUsers), authHandler.Register)

	// Parts (catálogo + proyección de stock)
	parts := protected.Group("/parts")
	partHandler := NewPartHandler(deps.PartUC, deps.MovementUC, deps.Projector)
	parts.Post("/", RequirePermission(deps.UserRepo, permission.PartsCreate), partHandler.Create)
	parts.Get("/", RequirePermission(deps.UserRepo, permission.PartsView), partHandler.List)
	parts.Get("/:id", RequirePermission(deps.UserRepo, permission.PartsView), partHandler.GetByID)
	parts.Put("/:id", RequirePermission(deps.UserRepo, permission.PartsUpdate), partHandler.Update)
	parts.Delete("/:id", RequirePermission(deps.UserRepo, permission.PartsDelete), partHandler.Delete)
	parts.Get("/:id/stock", RequirePermission(deps.UserRepo, permission.PartsView), partHandler.Stock)
	parts.Get("/:id/movements", RequirePermission(deps.UserRepo, permission.PartsView, permission.MovementsView), partHandler.Movements)

	// Documentos: mismo handler por kind, permisos propios de cada kind
	mountDocumentRoutes(protected, deps, entity.DocumentKindReceiving, "/receivings", documentPerms{
		view: permission.ReceivingsView, create: permission.ReceivingsCreate,
		update: permission.ReceivingsUpdate, del: permission.ReceivingsDelete,
		confirm: permission.ReceivingsConfirm, complete: permission.ReceivingsComplete,
		cancel: permission.ReceivingsCancel, confirmGoods: permission.ReceivingsConfirmGR,
	})
	mountDocumentRoutes(protected, deps, entity.DocumentKindOutgoing, "/outgoings", documentPerms{
		view: permission.OutgoingsView, create: permission.OutgoingsCreate,
		update: permission.OutgoingsUpdate, del: permission.OutgoingsDelete,
		confirm: permission.OutgoingsConfirm, complete: permission.OutgoingsComplete,
		cancel: permission.OutgoingsCancel, confirmGoods: permission.OutgoingsConfirmGI,
	})
	requestsHandler := mountDocumentRoutes(protected, deps, entity.DocumentKindRequest, "/requests", documentPerms{
		view: permission.RequestsView, create: permission.RequestsCreate,
		update: permission.RequestsUpdate, del: permission.RequestsDelete,
		confirm: permission.RequestsConfirm, complete: permission.RequestsComplete,
		cancel: permission.RequestsCancel,
	})
	protected.Post("/requests/:id/items/:itemId/supply",
		RequirePermission(deps.UserRepo, permission.RequestsSupply), requestsHandler.SupplyItem)

	// Movements (libro + ajustes)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC, deps.AdjustUC)
	movements.Get("/", RequirePermission(deps.UserRepo, permission.MovementsView), movementHandler.List)
	movements.Post("/adjust", RequirePermission(deps.UserRepo, permission.MovementsAdjust), movementHandler.Adjust)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", RequirePermission(deps.UserRepo, permission.DashboardView), dashboardHandler.Summary)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC)
	protected.Get("/reports/movements.pdf", RequirePermission(deps.UserRepo, permission.ReportsView), reportHandler.MovementsPDF)

	// Users: /me para cualquier autenticado, el resto con manage_users
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Get("/permissions", RequirePermission(deps.UserRepo, permission.ManageUsers), userHandler.Permissions)
	users.Get("/", RequirePermission(deps.UserRepo, permission.ManageUsers), userHandler.List)
	users.Get("/:id", RequirePermission(deps.UserRepo, permission.ManageUsers), userHandler.GetByID)
	users.Put("/:id", RequirePermission(deps.UserRepo, permission.ManageUsers), userHandler.Update)
	users.Delete("/:id", RequirePermission(deps.UserRepo, permission.ManageUsers), userHandler.Delete)

	// Events (SSE): basta con estar autenticado
	eventsGroup := protected.Group("/events")
	eventHandler := NewEventHandler(deps.Broadcaster)
	eventsGroup.Get("/stream", eventHandler.Stream)
	eventsGroup.Get("/status", eventHandler.Status)
}

// documentPerms permisos por acción de un kind de documento.
type documentPerms struct {
	view, create, update, del string
	confirm, complete, cancel string
	confirmGoods              string
}

// mountDocumentRoutes registra las rutas de ciclo de vida de un kind bajo prefix.
func mountDocumentRoutes(router fiber.Router, deps RouterDeps, kind, prefix string, perms documentPerms) *DocumentHandler {
	h := NewDocumentHandler(kind, deps.DocumentUC)
	g := router.Group(prefix)
	g.Post("/", RequirePermission(deps.UserRepo, perms.create), h.Create)
	g.Get("/", RequirePermission(deps.UserRepo, perms.view), h.List)
	g.Get("/:id", RequirePermission(deps.UserRepo, perms.view), h.GetByID)
	g.Put("/:id", RequirePermission(deps.UserRepo, perms.update), h.Update)
	g.Delete("/:id", RequirePermission(deps.UserRepo, perms.del), h.Delete)
	g.Post("/:id/confirm", RequirePermission(deps.UserRepo, perms.confirm), h.Confirm)
	g.Post("/:id/complete", RequirePermission(deps.UserRepo, perms.complete), h.Complete)
	g.Post("/:id/cancel", RequirePermission(deps.UserRepo, perms.cancel), h.Cancel)
	if perms.confirmGoods != "" {
		g.Post("/:id/confirm-goods", RequirePermission(deps.UserRepo, perms.confirmGoods), h.ConfirmGoods)
	}
	return h
}

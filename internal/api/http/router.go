package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/http/handlers"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Org            *handlers.OrgHandler
	Events         *handlers.EventsHandler
	Sales          *handlers.SalesHandler
	Tickets        *handlers.TicketsHandler
	Validation     *handlers.ValidationHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Org.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Org.ChangePassword)

	org := app.Group("/org", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.OrgRoleAdmin))
	org.Post("/users", cfg.Org.CreateMember)
	org.Get("/users", cfg.Org.ListMembers)
	org.Post("/users/:id/status", cfg.Org.SetStatus)

	events := app.Group("/events", cfg.AuthMiddleware.Handle)
	events.Post("", auth.RequireRole(domain.OrgRoleAdmin), cfg.Events.CreateEvent)
	events.Get("", auth.RequireAnyRole(), cfg.Events.ListEvents)
	events.Get("/:id", auth.RequireAnyRole(), cfg.Events.GetEvent)

	sales := app.Group("/sales", cfg.AuthMiddleware.Handle)
	sales.Post("/tickets", auth.RequireRole(domain.OrgRolePromoter, domain.OrgRoleTeamLeader, domain.OrgRoleManager), cfg.Sales.CreateSale)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("", auth.RequireAnyRole(), cfg.Tickets.ListTickets)
	tickets.Get("/:id", auth.RequireAnyRole(), cfg.Tickets.GetTicket)

	admin := tickets.Group("", auth.RequireRole(domain.OrgRoleAdmin, domain.OrgRoleManager))
	admin.Post("/:id/disable", cfg.Tickets.DisableTicket)
	admin.Post("/:id/enable", cfg.Tickets.EnableTicket)
	admin.Post("/:id/cancel", cfg.Tickets.CancelTicket)

	validate := app.Group("/validate", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.OrgRoleValidator, domain.OrgRoleAdmin))
	validate.Post("", cfg.Validation.Validate)

	stats := app.Group("/stats", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	stats.Get("/:orgId/rollup", cfg.Stats.Rollup)
}

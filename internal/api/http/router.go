package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicvoice/complaint-service/internal/api/http/handlers"
	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Notifications  *handlers.NotificationsHandler
	Stats          *handlers.StatsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireRoles())
	protected.Get("/complaints", cfg.Complaints.List)
	protected.Get("/complaints/map", cfg.Complaints.Map)
	protected.Post("/complaints/classify", cfg.Complaints.Classify)
	protected.Get("/complaints/:id", cfg.Complaints.Get)
	protected.Post("/complaints", auth.RequireRoles(domain.RoleCitizen, domain.RoleAdmin), cfg.Complaints.Create)
	protected.Put("/complaints/:id/status", auth.RequireRoles(domain.RoleDepartment, domain.RoleAdmin), cfg.Complaints.UpdateStatus)
	protected.Post("/complaints/:id/vote", cfg.Complaints.Vote)
	protected.Post("/complaints/:id/rate", auth.RequireRoles(domain.RoleCitizen), cfg.Complaints.Rate)
	protected.Delete("/complaints/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Complaints.Delete)

	protected.Get("/notifications", cfg.Notifications.List)
	protected.Put("/notifications/read-all", cfg.Notifications.MarkAllRead)
	protected.Put("/notifications/:id/read", cfg.Notifications.MarkRead)

	protected.Get("/stats/city", cfg.Stats.City)
	protected.Get("/stats/department/:dept", auth.RequireRoles(domain.RoleDepartment, domain.RoleAdmin), cfg.Stats.Department)

	protected.Get("/users/me", cfg.Users.Me)
	protected.Get("/departments", cfg.Users.Departments)
}

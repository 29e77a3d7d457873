package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Complaints     *handlers.ComplaintsHandler
	Reports        *handlers.ReportsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    fiber.Handler
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.ChangePassword)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	complaints := app.Group("/complaints")
	complaints.Get("/", cfg.AuthMiddleware.Optional, cfg.Complaints.List)
	complaints.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), rateLimiter, cfg.Complaints.Create)
	complaints.Post("/check-duplicate", cfg.Complaints.CheckDuplicate)
	complaints.Get("/heatmap", cfg.Reports.Heatmap)
	complaints.Get("/analytics", cfg.Reports.Analytics)
	complaints.Get("/stats", cfg.Reports.Stats)
	complaints.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Complaints.Get)
	complaints.Get("/:id/timeline", cfg.AuthMiddleware.Optional, cfg.Complaints.Timeline)
	complaints.Patch("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Complaints.UpdateStatus)
	complaints.Post("/:id/upvote", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Complaints.Upvote)
	complaints.Post("/:id/escalate", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Complaints.Escalate)
	complaints.Post("/:id/escalation/reset", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Complaints.ResetEscalation)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/escalations/run", cfg.Admin.RunEscalations)
	admin.Post("/users", cfg.Users.CreateUser)
}

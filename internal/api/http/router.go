package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/staffsync/staffsync-api/internal/api/http/handlers"
	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Personnel      *handlers.PersonnelHandler
	Audit          *handlers.AuditHandler
	AuditService   *service.AuditService
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	audit := auditMiddleware(cfg.AuditService)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/me", cfg.AuthMiddleware.Optional, cfg.Auth.Me)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), audit)
	session.Post("/logout", cfg.Auth.Logout)
	session.Post("/password/change", cfg.Auth.ChangePassword)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), audit)

	changes := api.Group("/profile/changes")
	changes.Post("/", auth.RequireAction(domain.ActionSubmit), cfg.Profile.SubmitChange)
	changes.Get("/", cfg.Profile.ListChanges)
	changes.Get("/:id", cfg.Profile.GetChange)
	changes.Post("/:id/recommend", auth.RequireAction(domain.ActionRecommend), cfg.Profile.Recommend)
	changes.Post("/:id/finalize", auth.RequireAction(domain.ActionFinalize), cfg.Profile.Finalize)

	api.Patch("/users/:id/profile", auth.RequireAction(domain.ActionDirectUpdate), cfg.Profile.UpdateProfile)
	api.Patch("/tiers/:forceNumber", auth.RequireAction(domain.ActionManageTier), cfg.Auth.SetTier)

	api.Get("/personnel", cfg.Personnel.List)
	api.Get("/personnel/export", auth.RequireAction(domain.ActionExport), cfg.Personnel.Export)
	api.Get("/musterings/breakdown", cfg.Personnel.Musterings)
	api.Get("/bases/breakdown", cfg.Personnel.Bases)
	api.Get("/units/breakdown", cfg.Personnel.Units)

	api.Get("/audit-logs", auth.RequireAction(domain.ActionViewAudit), cfg.Audit.List)
}

package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicworks/civic-backend/internal/config"
	"github.com/civicworks/civic-backend/internal/handlers"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	provider identity.Provider,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	contractorHandler *handlers.ContractorHandler,
	adminHandler *handlers.AdminHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Public read surface
	api.Get("/reports", reportHandler.List)
	api.Get("/reports/:id", reportHandler.Get)
	api.Get("/reports/:id/timeline", reportHandler.Timeline)
	api.Get("/wards/:id/reports", reportHandler.ListByWard)

	// Citizen endpoints (JWT required) - applied per route so the public
	// reads above stay public
	api.Post("/reports", middleware.JWTProtected(cfg), reportHandler.Create)
	api.Put("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Update)
	api.Delete("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Delete)
	api.Post("/reports/:id/upvote", middleware.JWTProtected(cfg), reportHandler.Upvote)
	api.Post("/reports/:id/subscribe", middleware.JWTProtected(cfg), reportHandler.Subscribe)
	api.Delete("/reports/:id/subscribe", middleware.JWTProtected(cfg), reportHandler.Unsubscribe)
	api.Get("/my/reports", middleware.JWTProtected(cfg), reportHandler.MyReports)

	// Contractor surface
	contractor := api.Group("/contractor",
		middleware.JWTProtected(cfg),
		middleware.RequireRole(identity.RoleContractor),
	)
	contractor.Get("/reports", contractorHandler.AvailableReports)
	contractor.Post("/reports/:id/bids", contractorHandler.SubmitBid)
	contractor.Get("/assignments", contractorHandler.MyAssignments)
	contractor.Post("/proofs", contractorHandler.SubmitProof)

	// Moderation and workflow panel. Ops token or JWT, moderator and up.
	admin := api.Group("/admin",
		middleware.Authenticated(cfg, provider),
		middleware.RequireRole(identity.RoleModerator, identity.RoleAdmin, identity.RoleSuperAdmin),
	)
	admin.Put("/reports/:id/status", adminHandler.ChangeStatus)
	admin.Post("/reports/:id/assign", adminHandler.AssignDirect)
	admin.Get("/reports/:id/bids", adminHandler.ListBids)
	admin.Post("/reports/:id/bids/:bidId/accept", adminHandler.AcceptBid)
	admin.Post("/reports/:id/moderate", adminHandler.Moderate)
	admin.Put("/proofs/:id/review", adminHandler.ReviewProof)
	admin.Get("/audit-log", adminHandler.AuditLog)

	// Blocking a contractor cancels their active work; admins only.
	api.Put("/admin/contractors/:id/block",
		middleware.Authenticated(cfg, provider),
		middleware.RequireRole(identity.RoleAdmin, identity.RoleSuperAdmin),
		adminHandler.BlockContractor,
	)
}

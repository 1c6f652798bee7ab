package routes

import (
	"civic-engagement/missionhub/internal/api"
	"civic-engagement/missionhub/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers the admin API v1 routes. Every route needs an admin bearer token.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(5, 10, "127.0.0.1")

	r.Route("/api/v1/admin", func(admin chi.Router) {
		admin.Use(middleware.InFlightMiddleware(deps.Metrics, "admin"))
		admin.Use(limiter.Middleware)
		admin.Use(middleware.AuthMiddleware(deps.Services.Tokens))
		admin.Use(middleware.IsAdminMiddleware())

		admin.Get("/imports", handlers.Imports.ListImports())
		admin.Get("/imports/{importId}", handlers.Imports.GetImport())
		admin.Post("/publishers/{publisherId}/imports", handlers.Imports.TriggerImport())

		admin.Get("/jobs/status", handlers.Jobs.GetJobStatus())
		admin.Post("/jobs/moderation", handlers.Jobs.TriggerModeration())
	})
}

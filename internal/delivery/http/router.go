package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/metrics"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/service"
)

// SetupRoutes configures all HTTP routes. m may be nil to disable metrics.
func SetupRoutes(app *fiber.App, issues *service.IssueService, analytics *service.AnalyticsService, m *metrics.Metrics, log logging.Logger) {
	handler := NewHandler(issues, analytics, log)

	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Issue intake and triage
		api.Post("/issues", handler.SubmitIssue)
		api.Get("/issues", handler.ListIssues)
		api.Get("/issues/:id", handler.GetIssue)
		api.Put("/issues/:id", handler.UpdateIssue)
		api.Get("/issues/:id/history", handler.GetIssueHistory)
		api.Post("/issues/:id/reclassify", handler.ReclassifyIssue)

		// Pipeline previews
		api.Post("/ai/predict", handler.Predict)
		api.Post("/ai/suggestions", handler.Suggestions)

		// Analytics
		api.Get("/analytics", handler.GetDashboard)
		api.Get("/analytics/summary", handler.GetSummary)
		api.Get("/analytics/hotspots", handler.GetHotspots)
		api.Get("/analytics/trends", handler.GetTrends)
	}
}

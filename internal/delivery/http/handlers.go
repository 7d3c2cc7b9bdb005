package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	issues    *service.IssueService
	analytics *service.AnalyticsService
	log       logging.Logger
}

// NewHandler creates a new handler
func NewHandler(issues *service.IssueService, analytics *service.AnalyticsService, log logging.Logger) *Handler {
	return &Handler{
		issues:    issues,
		analytics: analytics,
		log:       log.Named("http"),
	}
}

// fail passes domain errors through to ErrorHandler and hides the rest
// behind a generic message
func (h *Handler) fail(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrIssueNotFound) {
		return err
	}
	h.log.Error(message,
		logging.String("method", c.Method()),
		logging.String("path", c.Path()),
		logging.Err(err),
	)
	return fiber.NewError(fiber.StatusInternalServerError, message)
}

func issueID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid issue id")
	}
	return int64(id), nil
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	code := fiber.StatusOK
	if err := h.issues.Health(c.Context()); err != nil {
		h.log.Warn("health check failed", logging.Err(err))
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": "civic-issue-reporter",
		"version": "1.0.0",
		"models":  h.issues.Models(),
	})
}

// SubmitIssue runs the pipeline on a new report and stores it
func (h *Handler) SubmitIssue(c *fiber.Ctx) error {
	var report domain.IssueReport
	if err := c.BodyParser(&report); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	issue, err := h.issues.Submit(c.Context(), report)
	if err != nil {
		return h.fail(c, err, "Failed to submit issue")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    issue,
	})
}

// ListIssues returns issues filtered by status, category and priority
func (h *Handler) ListIssues(c *fiber.Ctx) error {
	filter := domain.IssueFilter{
		Status:        domain.Status(c.Query("status")),
		PriorityLevel: domain.PriorityLevel(c.Query("priority")),
		Limit:         c.QueryInt("limit", 100),
	}
	if raw := c.Query("category"); raw != "" {
		cat, err := domain.ParseCategory(raw)
		if err != nil {
			return &domain.ValidationError{Field: "category", Kind: domain.KindInvalidCategoryFilter, Value: raw}
		}
		filter.Category = cat
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	issues, err := h.issues.List(c.Context(), filter)
	if err != nil {
		return h.fail(c, err, "Failed to list issues")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    issues,
		"count":   len(issues),
	})
}

// GetIssue returns one issue
func (h *Handler) GetIssue(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	issue, err := h.issues.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch issue")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    issue,
	})
}

// UpdateIssue applies an administrator's status change
func (h *Handler) UpdateIssue(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var update domain.StatusUpdate
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	issue, err := h.issues.UpdateStatus(c.Context(), id, update)
	if err != nil {
		return h.fail(c, err, "Failed to update issue")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    issue,
	})
}

// GetIssueHistory returns the status history of an issue
func (h *Handler) GetIssueHistory(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	history, err := h.issues.History(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch issue history")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    history,
		"count":   len(history),
	})
}

// ReclassifyIssue reruns the pipeline for a stored issue
func (h *Handler) ReclassifyIssue(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	issue, err := h.issues.Reclassify(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to reclassify issue")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    issue,
	})
}

// Predict previews the pipeline output without storing the report
func (h *Handler) Predict(c *fiber.Ctx) error {
	var report domain.IssueReport
	if err := c.BodyParser(&report); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	prediction, err := h.issues.Predict(c.Context(), report)
	if err != nil {
		return h.fail(c, err, "Failed to get prediction")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

type suggestionRequest struct {
	PartialText string `json:"partial_text"`
}

// Suggestions completes a partial issue title
func (h *Handler) Suggestions(c *fiber.Ctx) error {
	var req suggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"suggestions": service.Suggest(strings.TrimSpace(req.PartialText)),
	})
}

// GetDashboard returns summary, hotspots and trends together
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.analytics.Dashboard(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to fetch analytics")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetSummary returns the dashboard counters
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	sum, err := h.analytics.Summary(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to fetch summary")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sum,
	})
}

// GetHotspots returns the hotspot report
func (h *Handler) GetHotspots(c *fiber.Ctx) error {
	report, err := h.analytics.Hotspots(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to fetch hotspots")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

// GetTrends returns the forecast for the current week
func (h *Handler) GetTrends(c *fiber.Ctx) error {
	pred, err := h.analytics.Trends(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to fetch trends")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    pred,
	})
}

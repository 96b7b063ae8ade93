package history

import (
	"errors"

	"fleet-sync/core/failure"
	"fleet-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for run history.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleListRuns)
	group.Get("/archive", h.HandleListArchived)
	group.Get("/:id", h.HandleGetRun)
	group.Get("/:id/report", h.HandleGetReport)
}

// HandleListRuns returns the most recent runs.
// Query: limit (default 20).
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.Runs(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, "List runs failed", err)
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// HandleListArchived returns the ids of archived reports.
func (h *Handler) HandleListArchived(c *fiber.Ctx) error {
	ids, err := h.service.Archived(c.Context())
	if err != nil {
		return h.fail(c, "List archived reports failed", err)
	}
	return c.JSON(fiber.Map{"runs": ids})
}

// HandleGetRun returns one run with device outcomes.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.service.Run(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Get run failed", err)
	}
	return c.JSON(run)
}

// HandleGetReport returns the archived JSON report of a run.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	report, err := h.service.Report(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Get report failed", err)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, failure.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	default:
		logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

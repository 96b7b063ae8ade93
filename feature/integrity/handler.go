package integrity

import (
	"errors"

	"fleet-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for preflight checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/target", h.HandleTargetCheck)
	group.Get("/source", h.HandleSourceCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/archive", h.HandleArchiveCheck)
}

// HandleIntegrityCheck runs every preflight check.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.RunAll(c.Context())
	if !report.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleTargetCheck pings the target and validates configured ids.
func (h *Handler) HandleTargetCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckTarget(c.Context())
	if err != nil {
		return h.fail(c, "Target check failed", err)
	}
	return c.JSON(report)
}

// HandleSourceCheck authenticates against the source.
func (h *Handler) HandleSourceCheck(c *fiber.Ctx) error {
	if err := h.service.CheckSource(c.Context()); err != nil {
		return h.fail(c, "Source check failed", err)
	}
	return c.JSON(fiber.Map{"status": StatusOK})
}

// HandleSchemaCheck compares the history schema with its models.
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		return h.fail(c, "Schema check failed", err)
	}
	return c.JSON(report)
}

// HandleArchiveCheck checks and optionally creates the archive bucket.
// Query: fix=true.
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	exists, err := h.service.CheckArchive(c.Context())
	if err != nil {
		return h.fail(c, "Archive check failed", err)
	}

	if !exists && fix {
		l.Info("Attempting to create archive bucket")
		if err := h.service.FixArchive(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create archive bucket",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed"})
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"exists": exists,
	})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

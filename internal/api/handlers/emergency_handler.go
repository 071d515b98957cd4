package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/internal/triage"
	"github.com/allinone/backend/pkg/logger"
)

type EmergencyHandler struct {
	orchestrator *triage.Orchestrator
}

func NewEmergencyHandler(orchestrator *triage.Orchestrator) *EmergencyHandler {
	return &EmergencyHandler{
		orchestrator: orchestrator,
	}
}

type submitRequest struct {
	Description string           `json:"description"`
	AudioRef    string           `json:"audioUrl"`
	ImageRef    string           `json:"imageUrl"`
	Location    *models.Location `json:"location"`
	UserRole    models.Role      `json:"userRole"`
}

// HandleSubmit runs the full triage pipeline for one emergency report.
func (h *EmergencyHandler) HandleSubmit(c *fiber.Ctx) error {
	var req submitRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  "INVALID_BODY",
			"error": "Invalid request body",
		})
	}

	result, err := h.orchestrator.Triage(c.Context(), triage.RawInput{
		Description: req.Description,
		AudioRef:    req.AudioRef,
		ImageRef:    req.ImageRef,
		Location:    req.Location,
		UserRole:    req.UserRole,
	})
	if err != nil {
		if errors.Is(err, triage.ErrMissingDescription) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"code":  "MISSING_DESCRIPTION",
				"error": "Description is required",
			})
		}
		logger.Error("Failed to triage emergency", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":  "INTERNAL",
			"error": "Failed to process emergency",
		})
	}

	return c.JSON(fiber.Map{
		"incident":     result.Incident,
		"responsePlan": result.Plan,
	})
}

// HandleRecent serves the recent-activity view.
func (h *EmergencyHandler) HandleRecent(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"code":  "INVALID_LIMIT",
				"error": "limit must be a non-negative integer",
			})
		}
		limit = parsed
	}

	incidents := h.orchestrator.Recent(c.Context(), limit)

	return c.JSON(fiber.Map{
		"incidents": incidents,
		"count":     len(incidents),
	})
}

// HandleGet serves one incident by id.
func (h *EmergencyHandler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.orchestrator.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, triage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"code":  "NOT_FOUND",
				"error": "Incident not found",
			})
		}
		logger.Error("Failed to load incident",
			zap.String("incident_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":  "INTERNAL",
			"error": "Failed to load incident",
		})
	}

	return c.JSON(fiber.Map{
		"incident": record,
	})
}

type updateRequest struct {
	MediaRef string        `json:"mediaUrl"`
	Status   models.Status `json:"status"`
}

// HandleUpdate attaches media or transitions status on an existing incident.
// These are the only mutable fields after creation.
func (h *EmergencyHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  "INVALID_BODY",
			"error": "Invalid request body",
		})
	}

	if req.MediaRef == "" && req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  "EMPTY_UPDATE",
			"error": "Provide mediaUrl or status",
		})
	}
	if req.Status != "" && req.Status != models.StatusActive && req.Status != models.StatusResolved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  "INVALID_STATUS",
			"error": "status must be ACTIVE or RESOLVED",
		})
	}

	var (
		record *models.IncidentRecord
		err    error
	)
	if req.MediaRef != "" {
		record, err = h.orchestrator.AttachMedia(c.Context(), id, req.MediaRef)
	}
	if err == nil && req.Status != "" {
		record, err = h.orchestrator.SetStatus(c.Context(), id, req.Status)
	}
	if err != nil {
		if errors.Is(err, triage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"code":  "NOT_FOUND",
				"error": "Incident not found",
			})
		}
		logger.Error("Failed to update incident",
			zap.String("incident_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":  "INTERNAL",
			"error": "Failed to update incident",
		})
	}

	return c.JSON(fiber.Map{
		"incident": record,
	})
}

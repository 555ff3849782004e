package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// RecordActivity always answers 202 for a well-formed event; storage
// failures are logged by the service.
func (h *ProgressHandler) RecordActivity(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.RecordActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !services.IsActivityType(req.Type) {
		return badRequest(c, "Unknown activity type")
	}

	h.progress.RecordActivity(c.UserContext(), championID, req.Type, req.PanelID, req.IndicatorID, req.Metadata)
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *ProgressHandler) Resume(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	point, err := h.progress.GetResumePoint(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"resume_point": point})
}

func (h *ProgressHandler) Panels(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	progress, err := h.progress.PanelProgress(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"panels": progress})
}

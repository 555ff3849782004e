package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	store    *catalog.Store
	progress *services.ProgressService
}

func NewCatalogHandler(store *catalog.Store, progress *services.ProgressService) *CatalogHandler {
	return &CatalogHandler{store: store, progress: progress}
}

func (h *CatalogHandler) ListPanels(c *fiber.Ctx) error {
	panels, err := h.store.ListPanels(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"panels": panels})
}

// GetPanel returns the panel with its indicators and records the view.
func (h *CatalogHandler) GetPanel(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid panel ID")
	}

	panel, err := h.store.GetPanel(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	h.progress.RecordActivity(c.UserContext(), championID, models.ActivityViewPanel, &panel.ID, nil, nil)
	return c.JSON(panel)
}

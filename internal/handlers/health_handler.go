package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	catalog *catalog.Catalog
}

func NewHealthHandler(db *gorm.DB, c *catalog.Catalog) *HealthHandler {
	return &HealthHandler{db: db, catalog: c}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	panels := 0
	if h.catalog != nil {
		panels = len(h.catalog.Panels())
	}

	return c.JSON(dto.HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		PanelCount: panels,
	})
}

package catalog

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPanelNotFound = apperr.NotFound("panel not found")

// Store serves read-only panel and indicator lookups from the database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPanels(ctx context.Context) ([]models.Panel, error) {
	var panels []models.Panel
	if err := s.db.WithContext(ctx).Order("position ASC, name ASC").Find(&panels).Error; err != nil {
		return nil, apperr.Store("list panels", err)
	}
	return panels, nil
}

// GetPanel returns the panel with its indicators in display order.
func (s *Store) GetPanel(ctx context.Context, id uuid.UUID) (*models.Panel, error) {
	var panel models.Panel
	err := s.db.WithContext(ctx).
		Preload("Indicators", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&panel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPanelNotFound
	}
	if err != nil {
		return nil, apperr.Store("load panel", err)
	}
	return &panel, nil
}

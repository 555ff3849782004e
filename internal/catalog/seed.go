package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed upserts panels and indicators by slug. Running it again with the
// same file changes nothing; edited names and guidance are applied. An
// indicator already stored under one panel cannot move to another.
func (c *Catalog) Seed(ctx context.Context, db *gorm.DB) error {
	panels := c.Panels()
	if len(panels) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]models.Panel, len(panels))
		for i, p := range panels {
			rows[i] = models.Panel{Slug: p.Slug, Name: p.Name, Description: p.Description, Position: i}
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "position", "updated_at"}),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("seed panels: %w", err)
		}

		// Conflicting rows keep their original ids; read them back.
		slugs := make([]string, len(panels))
		for i, p := range panels {
			slugs[i] = p.Slug
		}
		var stored []models.Panel
		if err := tx.Where("slug IN ?", slugs).Find(&stored).Error; err != nil {
			return fmt.Errorf("reload panels: %w", err)
		}
		ids := make(map[string]models.Panel, len(stored))
		for _, p := range stored {
			ids[p.Slug] = p
		}

		var indicators []models.Indicator
		for _, p := range panels {
			for j, ind := range p.Indicators {
				indicators = append(indicators, models.Indicator{
					PanelID:  ids[p.Slug].ID,
					Slug:     ind.Slug,
					Name:     ind.Name,
					Guidance: ind.Guidance,
					Position: j,
				})
			}
		}
		if len(indicators) > 0 {
			if err := c.checkIndicatorPanels(tx, indicators); err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "guidance", "position", "updated_at"}),
			}).Create(&indicators).Error; err != nil {
				return fmt.Errorf("seed indicators: %w", err)
			}
		}

		slog.Info("catalog seeded", "panels", len(panels), "indicators", len(indicators))
		return nil
	})
}

// checkIndicatorPanels fails when a stored indicator is no longer listed
// under the panel it was seeded into.
func (c *Catalog) checkIndicatorPanels(tx *gorm.DB, indicators []models.Indicator) error {
	slugs := make([]string, len(indicators))
	for i, ind := range indicators {
		slugs[i] = ind.Slug
	}

	var stored []struct {
		Slug      string
		PanelSlug string
	}
	if err := tx.Model(&models.Indicator{}).
		Select("indicators.slug AS slug, panels.slug AS panel_slug").
		Joins("JOIN panels ON panels.id = indicators.panel_id").
		Where("indicators.slug IN ?", slugs).
		Scan(&stored).Error; err != nil {
		return fmt.Errorf("load seeded indicators: %w", err)
	}

	for _, row := range stored {
		if !c.listsIndicator(row.PanelSlug, row.Slug) {
			return fmt.Errorf("catalog: indicator %q belongs to panel %q and cannot move", row.Slug, row.PanelSlug)
		}
	}
	return nil
}

func (c *Catalog) listsIndicator(panelSlug, indicatorSlug string) bool {
	p, ok := c.Panel(panelSlug)
	if !ok {
		return false
	}
	for _, ind := range p.Indicators {
		if ind.Slug == indicatorSlug {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Panel groups indicators under one sustainability topic.
type Panel struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string      `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Position    int         `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Indicators  []Indicator `gorm:"foreignKey:PanelID" json:"indicators,omitempty"`
}

func (p *Panel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Indicator is a single reportable ESG metric. Guidance is read-only for
// the review workflow.
type Indicator struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PanelID   uuid.UUID `gorm:"type:uuid;not null;index" json:"panel_id"`
	Slug      string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Guidance  string    `gorm:"type:text" json:"guidance,omitempty"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Indicator) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

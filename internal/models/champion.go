package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Champion is a registered reviewer. ID equals the identity provider's
// principal id; the row is provisioned the first time the principal is seen.
type Champion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;index" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Credits     int       `gorm:"not null;default:0;index" json:"credits"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Champion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Champion) TableName() string {
	return "champions"
}

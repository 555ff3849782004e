package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationReviewAccepted = "review_accepted"
	NotificationReviewRejected = "review_rejected"
	NotificationPeerUpvote     = "peer_upvote"
	NotificationCreditAdjusted = "credit_adjusted"
)

// Notification is a persisted message for a champion. Read only ever goes
// from false to true.
type Notification struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ChampionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"champion_id"`
	Type       string            `gorm:"size:50;not null" json:"type"`
	Title      string            `gorm:"size:255;not null" json:"title"`
	Message    string            `gorm:"type:text" json:"message"`
	Read       bool              `gorm:"not null;default:false;index" json:"read"`
	Payload    datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
	ReadAt     *time.Time        `json:"read_at,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a single-indicator review from the legacy flow, moderated on
// its own rather than as part of a submission.
type Review struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ChampionID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"champion_id"`
	IndicatorID uuid.UUID    `gorm:"type:uuid;not null;index" json:"indicator_id"`
	Rating      int          `gorm:"not null;default:0" json:"rating"`
	Rationale   string       `gorm:"type:text" json:"rationale,omitempty"`
	Status      ReviewStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	ReviewerID  *uuid.UUID   `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	AdminNote   string       `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AcceptedReview is the insert-only record of a credited single review.
// The unique review id is what stops a second award.
type AcceptedReview struct {
	ReviewID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"review_id"`
	ChampionID uuid.UUID `gorm:"type:uuid;not null;index" json:"champion_id"`
	AdminID    uuid.UUID `gorm:"type:uuid;not null" json:"admin_id"`
	Credits    int       `gorm:"not null" json:"credits"`
	CreatedAt  time.Time `json:"created_at"`
}

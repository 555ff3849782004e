package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditKind string

const (
	CreditReview     CreditKind = "review"
	CreditVote       CreditKind = "vote"
	CreditCorrection CreditKind = "correction"
)

// CreditEntry records one mutation of a champion's balance. The source pair
// is unique, so each submission, review or vote can credit at most once.
type CreditEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChampionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"champion_id"`
	Kind       CreditKind `gorm:"size:20;not null;index" json:"kind"`
	Amount     int        `gorm:"not null" json:"amount"`
	SourceType string     `gorm:"size:30;not null;uniqueIndex:idx_credit_entries_source,priority:1" json:"source_type"`
	SourceID   string     `gorm:"size:64;not null;uniqueIndex:idx_credit_entries_source,priority:2" json:"source_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (e *CreditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

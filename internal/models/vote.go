package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteValue string

const (
	VoteUp   VoteValue = "up"
	VoteDown VoteValue = "down"
)

const (
	VoteTargetSubmission = "submission"
	VoteTargetReview     = "review"
)

// Vote is one champion's opinion of a peer's submission or review. A second
// vote on the same target overwrites the first.
type Vote struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TargetType    string    `gorm:"size:20;not null;uniqueIndex:idx_votes_target_voter,priority:1" json:"target_type"`
	TargetID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_voter,priority:2" json:"target_id"`
	VoterID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_voter,priority:3" json:"voter_id"`
	TargetOwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"target_owner_id"`
	Value         VoteValue `gorm:"size:10;not null" json:"value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

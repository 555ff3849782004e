package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionApproveSubmission = "approve_submission"
	ActionRejectSubmission  = "reject_submission"
	ActionAcceptReview      = "accept_review"
	ActionRejectReview      = "reject_review"
	ActionAdjustCredits     = "adjust_credits"
)

// AdminAction is the append-only audit record of a moderation decision.
type AdminAction struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"admin_id"`
	ActionType string            `gorm:"size:50;not null" json:"action_type"`
	TargetType string            `gorm:"size:30;not null;index:idx_admin_actions_target,priority:1" json:"target_type"`
	TargetID   string            `gorm:"size:64;not null;index:idx_admin_actions_target,priority:2" json:"target_id"`
	Details    datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (a *AdminAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActivityViewPanel       = "view_panel"
	ActivityViewIndicator   = "view_indicator"
	ActivityReviewIndicator = "review_indicator"
	ActivitySubmitReview    = "submit_review"
	ActivityStartSubmission = "start_submission"
)

// ActivityEvent is an append-only log entry. The integer id gives the log
// order independent of clock resolution.
type ActivityEvent struct {
	ID          uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ChampionID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"champion_id"`
	Type        string            `gorm:"size:50;not null;index" json:"type"`
	PanelID     *uuid.UUID        `gorm:"type:uuid" json:"panel_id,omitempty"`
	IndicatorID *uuid.UUID        `gorm:"type:uuid" json:"indicator_id,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionDraft    SubmissionStatus = "draft"
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// TerminalStatuses lists every status with no outgoing transition.
func TerminalStatuses() []SubmissionStatus {
	var out []SubmissionStatus
	for _, s := range []SubmissionStatus{SubmissionDraft, SubmissionPending, SubmissionApproved, SubmissionRejected} {
		if s.Terminal() {
			out = append(out, s)
		}
	}
	return out
}

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionDraft, SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

// ReviewSubmission is one champion's batch review of a panel.
// At most one pending row may exist per (champion, panel); see
// database.Migrate for the partial unique index.
type ReviewSubmission struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ChampionID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"champion_id"`
	PanelID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"panel_id"`
	Status      SubmissionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	ReviewerID  *uuid.UUID       `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	AdminNote   string           `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (s *ReviewSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IndicatorReview is the champion's judgment of one indicator inside a
// submission. Rows are never updated after insert.
type IndicatorReview struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_indicator_reviews_submission_indicator,priority:1" json:"submission_id"`
	IndicatorID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_indicator_reviews_submission_indicator,priority:2" json:"indicator_id"`
	ChampionID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"champion_id"`
	Rating       int            `gorm:"not null;default:0" json:"rating"`
	IsImportant  bool           `gorm:"not null;default:false" json:"is_important"`
	Rationale    string         `gorm:"type:text" json:"rationale,omitempty"`
	Tags         datatypes.JSON `json:"tags"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (r *IndicatorReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

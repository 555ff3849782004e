package dto

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	PanelID uuid.UUID `json:"panel_id"`
}

type AttachReviewsRequest struct {
	Reviews []services.IndicatorReviewInput `json:"reviews"`
}

type SubmitReviewRequest struct {
	IndicatorID uuid.UUID `json:"indicator_id"`
	Rating      int       `json:"rating"`
	Rationale   string    `json:"rationale"`
}

type CastVoteRequest struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	Value      string    `json:"value"`
}

type RecordActivityRequest struct {
	Type        string                 `json:"type"`
	PanelID     *uuid.UUID             `json:"panel_id"`
	IndicatorID *uuid.UUID             `json:"indicator_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

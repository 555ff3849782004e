package dto

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
)

type ModerationRequest struct {
	Comment string `json:"comment"`
}

type AdjustCreditsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type SubmissionModerationResponse struct {
	Submission       *models.ReviewSubmission `json:"submission"`
	AlreadyModerated bool                     `json:"already_moderated"`
}

type ReviewModerationResponse struct {
	Review           *models.Review `json:"review"`
	AlreadyModerated bool           `json:"already_moderated"`
}

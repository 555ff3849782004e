package handlers

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	submissionService *services.SubmissionService
}

func NewModerationHandler(moderationService *services.ModerationService, submissionService *services.SubmissionService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, submissionService: submissionService}
}

func (h *ModerationHandler) ListSubmissions(c *fiber.Ctx) error {
	limit, offset := paging(c)
	subs, total, err := h.submissionService.ListForAdmin(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse{Data: subs, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) ApproveSubmission(c *fiber.Ctx) error {
	return h.decideSubmission(c, h.moderationService.Approve)
}

func (h *ModerationHandler) RejectSubmission(c *fiber.Ctx) error {
	return h.decideSubmission(c, h.moderationService.Reject)
}

type submissionDecision func(ctx context.Context, submissionID, adminID uuid.UUID, note string) (*models.ReviewSubmission, error)

// decideSubmission answers 200 with already_moderated when the submission
// has left pending; repeating a decision is not an error for the caller.
func (h *ModerationHandler) decideSubmission(c *fiber.Ctx, decide submissionDecision) error {
	adminID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}

	var req dto.ModerationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	sub, err := decide(c.UserContext(), id, adminID, req.Comment)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidState) && sub != nil {
			return c.JSON(dto.SubmissionModerationResponse{Submission: sub, AlreadyModerated: true})
		}
		return writeError(c, err)
	}
	return c.JSON(dto.SubmissionModerationResponse{Submission: sub})
}

func (h *ModerationHandler) AcceptReview(c *fiber.Ctx) error {
	return h.decideReview(c, h.moderationService.AcceptReview)
}

func (h *ModerationHandler) RejectReview(c *fiber.Ctx) error {
	return h.decideReview(c, h.moderationService.RejectReview)
}

type reviewDecision func(ctx context.Context, reviewID, adminID uuid.UUID, note string) (*models.Review, error)

func (h *ModerationHandler) decideReview(c *fiber.Ctx, decide reviewDecision) error {
	adminID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid review ID")
	}

	var req dto.ModerationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	review, err := decide(c.UserContext(), id, adminID, req.Comment)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidState) && review != nil {
			return c.JSON(dto.ReviewModerationResponse{Review: review, AlreadyModerated: true})
		}
		return writeError(c, err)
	}
	return c.JSON(dto.ReviewModerationResponse{Review: review})
}

func (h *ModerationHandler) AdjustCredits(c *fiber.Ctx) error {
	adminID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid champion ID")
	}

	var req dto.AdjustCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	champion, err := h.moderationService.AdjustCredits(c.UserContext(), id, adminID, req.Amount, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(champion)
}

func (h *ModerationHandler) ListActions(c *fiber.Ctx) error {
	limit, _ := paging(c)
	actions, err := h.moderationService.ListAdminActions(c.UserContext(), c.Query("target_type"), c.Query("target_id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"actions": actions})
}

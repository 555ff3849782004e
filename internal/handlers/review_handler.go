package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	votes   *services.VoteService
}

func NewReviewHandler(reviews *services.ReviewService, votes *services.VoteService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, votes: votes}
}

func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SubmitReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.IndicatorID == uuid.Nil {
		return badRequest(c, "indicator_id is required")
	}

	review, err := h.reviews.SubmitReview(c.UserContext(), championID, req.IndicatorID, req.Rating, req.Rationale)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	reviews, err := h.reviews.ListReviews(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *ReviewHandler) Vote(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CastVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.TargetID == uuid.Nil {
		return badRequest(c, "target_id is required")
	}

	vote, err := h.votes.CastVote(c.UserContext(), championID, req.TargetType, req.TargetID, models.VoteValue(req.Value))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(vote)
}

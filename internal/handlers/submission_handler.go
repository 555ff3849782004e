package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.PanelID == uuid.Nil {
		return badRequest(c, "panel_id is required")
	}

	sub, err := h.submissions.CreateSubmission(c.UserContext(), championID, req.PanelID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *SubmissionHandler) AttachReviews(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}

	var req dto.AttachReviewsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rows, err := h.submissions.AttachIndicatorReviews(c.UserContext(), id, championID, req.Reviews)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reviews": rows})
}

// Get returns a submission to its author or to an admin.
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}

	detail, err := h.submissions.GetSubmissionWithReviews(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if detail.Submission.ChampionID != championID {
		if champion, ok := middleware.CurrentChampion(c); !ok || !champion.IsAdmin {
			return writeError(c, services.ErrSubmissionNotFound)
		}
	}
	return c.JSON(detail)
}

func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	subs, err := h.submissions.ListForChampion(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"submissions": subs})
}

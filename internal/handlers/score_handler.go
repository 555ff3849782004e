package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ScoreHandler struct {
	ledger    *services.LedgerService
	dashboard *services.DashboardService
}

func NewScoreHandler(ledger *services.LedgerService, dashboard *services.DashboardService) *ScoreHandler {
	return &ScoreHandler{ledger: ledger, dashboard: dashboard}
}

func (h *ScoreHandler) Score(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	score, err := h.ledger.ComputeScore(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	rank, err := h.ledger.Rank(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ScoreResponse{Score: score, Rank: rank})
}

func (h *ScoreHandler) Leaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	entries, err := h.ledger.Leaderboard(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

func (h *ScoreHandler) Dashboard(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	d, err := h.dashboard.Dashboard(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(d)
}

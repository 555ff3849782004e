package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChampionHandler struct {
	champions *services.ChampionService
}

func NewChampionHandler(champions *services.ChampionService) *ChampionHandler {
	return &ChampionHandler{champions: champions}
}

// Me returns the caller's champion profile as currently stored.
func (h *ChampionHandler) Me(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	champion, err := h.champions.GetChampion(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(champion)
}

package middleware

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired grants access when any of these hold:
// 1. the X-Admin-Token header matches ADMIN_TOKEN
// 2. the principal is listed in ADMIN_EMAILS or ADMIN_USER_IDS
// 3. the champion row carries the admin flag
// It must run after RequirePrincipal so moderation is attributable.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := identity.CurrentPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		if cfg.IsAdmin(p.Email, p.ID.String()) {
			return c.Next()
		}

		if champion, ok := CurrentChampion(c); ok && champion.IsAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

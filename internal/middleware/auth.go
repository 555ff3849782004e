package middleware

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

const championKey = "champion"

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// ChampionProvisioner creates the champion row for a first-time principal.
type ChampionProvisioner interface {
	EnsureChampion(ctx context.Context, p identity.Principal) (*models.Champion, error)
}

// RequirePrincipal resolves the verified token into a principal, rejects
// unconfirmed accounts and provisions the champion. It must run after
// JWTProtected.
func RequirePrincipal(champions ChampionProvisioner, hub *identity.SessionHub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := identity.FromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !p.EmailConfirmed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Email confirmation required",
			})
		}

		champion, err := champions.EnsureChampion(c.UserContext(), *p)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Service temporarily unavailable",
			})
		}

		identity.SetPrincipal(c, p)
		c.Locals(championKey, champion)
		if hub != nil {
			hub.Touch(p.ID)
		}
		if sentryHub := sentryfiber.GetHubFromContext(c); sentryHub != nil {
			sentryHub.Scope().SetUser(sentry.User{ID: p.ID.String(), Email: p.Email})
		}
		return c.Next()
	}
}

// CurrentChampion returns the champion provisioned by RequirePrincipal.
func CurrentChampion(c *fiber.Ctx) (*models.Champion, bool) {
	champion, ok := c.Locals(championKey).(*models.Champion)
	return champion, ok && champion != nil
}

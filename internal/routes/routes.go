package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Health        *handlers.HealthHandler
	Champions     *handlers.ChampionHandler
	Catalog       *handlers.CatalogHandler
	Submissions   *handlers.SubmissionHandler
	Reviews       *handlers.ReviewHandler
	Progress      *handlers.ProgressHandler
	Scores        *handlers.ScoreHandler
	Notifications *handlers.NotificationHandler
	Moderation    *handlers.ModerationHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	champions middleware.ChampionProvisioner,
	hub *identity.SessionHub,
	h Handlers,
) {
	api := app.Group("/api")

	// General API rate limiter, per IP
	if cfg.RateLimitPerMinute > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               cfg.RateLimitPerMinute,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}

	// Health (public)
	api.Get("/health", h.Health.Check)

	// Everything else requires a verified, confirmed principal.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.RequirePrincipal(champions, hub))

	protected.Get("/me", h.Champions.Me)

	protected.Get("/panels", h.Catalog.ListPanels)
	protected.Get("/panels/:id", h.Catalog.GetPanel)

	protected.Post("/submissions", h.Submissions.Create)
	protected.Get("/submissions", h.Submissions.List)
	protected.Get("/submissions/:id", h.Submissions.Get)
	protected.Post("/submissions/:id/reviews", h.Submissions.AttachReviews)

	protected.Post("/reviews", h.Reviews.Submit)
	protected.Get("/reviews", h.Reviews.List)
	protected.Post("/votes", h.Reviews.Vote)

	protected.Post("/activity", h.Progress.RecordActivity)
	protected.Get("/progress/resume", h.Progress.Resume)
	protected.Get("/progress/panels", h.Progress.Panels)

	protected.Get("/score", h.Scores.Score)
	protected.Get("/leaderboard", h.Scores.Leaderboard)
	protected.Get("/dashboard", h.Scores.Dashboard)

	protected.Get("/notifications", h.Notifications.List)
	protected.Get("/notifications/unread-count", h.Notifications.UnreadCount)
	protected.Post("/notifications/read-all", h.Notifications.MarkAllRead)
	protected.Post("/notifications/:id/read", h.Notifications.MarkRead)
	protected.Post("/session/logout", h.Notifications.Logout)

	// Admin moderation panel (protected + admin required)
	admin := protected.Group("/admin", middleware.AdminRequired(cfg))
	admin.Get("/submissions", h.Moderation.ListSubmissions)
	admin.Post("/submissions/:id/approve", h.Moderation.ApproveSubmission)
	admin.Post("/submissions/:id/reject", h.Moderation.RejectSubmission)
	admin.Post("/reviews/:id/accept", h.Moderation.AcceptReview)
	admin.Post("/reviews/:id/reject", h.Moderation.RejectReview)
	admin.Post("/champions/:id/credits", h.Moderation.AdjustCredits)
	admin.Get("/actions", h.Moderation.ListActions)
}

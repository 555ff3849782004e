package handlers

import (
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *identity.SessionHub
}

func NewNotificationHandler(notifications *services.NotificationService, hub *identity.SessionHub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	views, err := h.notifications.List(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	unread := 0
	for _, v := range views {
		if !v.Read {
			unread++
		}
	}
	return c.JSON(dto.NotificationsResponse{Notifications: views, UnreadCount: unread})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	n, err := h.notifications.UnreadCount(c.UserContext(), championID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.notifications.MarkRead(c.UserContext(), championID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.notifications.MarkAllRead(c.UserContext(), championID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}

// Logout ends the session on this server. Tokens themselves are revoked by
// the identity provider.
func (h *NotificationHandler) Logout(c *fiber.Ctx) error {
	championID, err := currentChampionID(c)
	if err != nil {
		return unauthorized(c)
	}
	h.hub.SignOut(championID)
	return c.JSON(fiber.Map{"message": "Signed out"})
}

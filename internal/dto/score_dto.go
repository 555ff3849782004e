package dto

import "github.com/ahmetcoskunkizilkaya/champions-backend/internal/services"

type ScoreResponse struct {
	*services.Score
	Rank *int `json:"rank"`
}

type NotificationsResponse struct {
	Notifications []services.NotificationView `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

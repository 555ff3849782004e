package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = apperr.NotFound("notification not found")

const notificationFetchTimeout = 5 * time.Second

// readCache remembers, per champion session, which notification ids were
// marked read. A cached read always wins over a remote unread.
type readCache struct {
	mu   sync.Mutex
	read map[uuid.UUID]map[string]struct{}
}

func newReadCache() *readCache {
	return &readCache{read: make(map[uuid.UUID]map[string]struct{})}
}

func (c *readCache) mark(championID uuid.UUID, ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.read[championID]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		c.read[championID] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

func (c *readCache) unmark(championID uuid.UUID, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.read[championID], id)
}

func (c *readCache) overlay(championID uuid.UUID, views []NotificationView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.read[championID]
	if len(set) == 0 {
		return
	}
	for i := range views {
		if _, ok := set[views[i].ID]; ok {
			views[i].Read = true
		}
	}
}

func (c *readCache) drop(championID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.read, championID)
}

// NotificationService merges the persisted and demo sources and keeps read
// state monotonic within a session.
type NotificationService struct {
	clock
	db        *gorm.DB
	persisted NotificationSource
	demo      NotificationSource
	cache     *readCache
	fetches   singleflight.Group
}

func NewNotificationService(db *gorm.DB, persisted, demo NotificationSource) *NotificationService {
	return &NotificationService{
		db:        db,
		persisted: persisted,
		demo:      demo,
		cache:     newReadCache(),
	}
}

// SubscribeSessions drops a champion's read cache when their session ends.
func (s *NotificationService) SubscribeSessions(hub *identity.SessionHub) func() {
	return hub.OnSessionChange(func(ev identity.SessionEvent) {
		if ev.Type == identity.SignedOut {
			s.cache.drop(ev.ChampionID)
		}
	})
}

// List returns the merged notifications for the champion. A failed fetch
// of persisted rows yields an empty list rather than an error.
func (s *NotificationService) List(ctx context.Context, championID uuid.UUID) (_ []NotificationView, err error) {
	ctx, span := startSpan(ctx, "notification.List", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	// The fetch is shared with every caller that joins it, so it must not
	// die with the request that happened to start it.
	v, fetchErr, _ := s.fetches.Do(championID.String(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationFetchTimeout)
		defer cancel()
		return s.persisted.List(fetchCtx, championID)
	})
	if fetchErr != nil {
		slog.WarnContext(ctx, "notification fetch failed",
			"champion_id", championID.String(),
			"error", fetchErr.Error(),
		)
		return []NotificationView{}, nil
	}
	persisted, _ := v.([]NotificationView)

	var demo []NotificationView
	if len(persisted) == 0 && s.demo != nil {
		demo, err = s.demo.List(ctx, championID)
		if err != nil {
			slog.WarnContext(ctx, "demo notifications unavailable", "error", err.Error())
			demo, err = nil, nil
		}
	}

	merged := MergeSources(persisted, demo)
	// Results may be shared with concurrent callers; overlay a private copy.
	out := make([]NotificationView, len(merged))
	copy(out, merged)
	s.cache.overlay(championID, out)
	return out, nil
}

// UnreadCount counts unread entries of List.
func (s *NotificationService) UnreadCount(ctx context.Context, championID uuid.UUID) (int, error) {
	views, err := s.List(ctx, championID)
	if err != nil {
		return 0, err
	}
	return countUnread(views), nil
}

func countUnread(views []NotificationView) int {
	n := 0
	for _, v := range views {
		if !v.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one notification read. Marking an already-read
// notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, championID uuid.UUID, notificationID string) (err error) {
	ctx, span := startSpan(ctx, "notification.MarkRead",
		attribute.String("champion_id", championID.String()),
		attribute.String("notification_id", notificationID),
	)
	defer endSpan(span, &err)

	if isDemoID(notificationID) {
		if !s.hasDemo(ctx, championID, notificationID) {
			return ErrNotificationNotFound
		}
		s.cache.mark(championID, notificationID)
		return nil
	}

	id, parseErr := uuid.Parse(notificationID)
	if parseErr != nil {
		return ErrNotificationNotFound
	}

	s.cache.mark(championID, notificationID)

	db := s.db.WithContext(ctx)
	res := db.Model(&models.Notification{}).
		Where("id = ? AND champion_id = ? AND read = ?", id, championID, false).
		Updates(map[string]interface{}{"read": true, "read_at": s.timeNow()})
	if res.Error != nil {
		return apperr.Store("mark notification read", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var exists int64
	if err := db.Model(&models.Notification{}).
		Where("id = ? AND champion_id = ?", id, championID).
		Count(&exists).Error; err != nil {
		return apperr.Store("check notification", err)
	}
	if exists == 0 {
		s.cache.unmark(championID, notificationID)
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) hasDemo(ctx context.Context, championID uuid.UUID, id string) bool {
	if s.demo == nil {
		return false
	}
	demo, err := s.demo.List(ctx, championID)
	if err != nil {
		return false
	}
	for _, v := range demo {
		if v.ID == id {
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification the champion can currently see as
// read, persisted or not.
func (s *NotificationService) MarkAllRead(ctx context.Context, championID uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "notification.MarkAllRead", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	views, err := s.List(ctx, championID)
	if err != nil {
		return err
	}
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	s.cache.mark(championID, ids...)

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("champion_id = ? AND read = ?", championID, false).
		Updates(map[string]interface{}{"read": true, "read_at": s.timeNow()}).Error; err != nil {
		return apperr.Store("mark all notifications read", err)
	}
	return nil
}

func insertNotification(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return apperr.Store("insert notification", err)
	}
	return nil
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoIDPrefix marks notification ids that come from the catalog rather
// than the database.
const DemoIDPrefix = "demo:"

const persistedListLimit = 100

// NotificationView is a notification as the client sees it, regardless of
// which source produced it.
type NotificationView struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Read      bool                   `json:"read"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Demo      bool                   `json:"demo"`
}

type NotificationSource interface {
	List(ctx context.Context, championID uuid.UUID) ([]NotificationView, error)
}

// MergeSources picks persisted when it has anything, demo otherwise. The two
// are never interleaved.
func MergeSources(persisted, demo []NotificationView) []NotificationView {
	if len(persisted) > 0 {
		return persisted
	}
	return demo
}

// PersistedSource lists the champion's stored notifications, newest first.
type PersistedSource struct {
	db *gorm.DB
}

func NewPersistedSource(db *gorm.DB) *PersistedSource {
	return &PersistedSource{db: db}
}

func (p *PersistedSource) List(ctx context.Context, championID uuid.UUID) ([]NotificationView, error) {
	var rows []models.Notification
	if err := p.db.WithContext(ctx).
		Where("champion_id = ?", championID).
		Order("created_at DESC, id DESC").
		Limit(persistedListLimit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Store("list notifications", err)
	}

	views := make([]NotificationView, len(rows))
	for i, n := range rows {
		views[i] = NotificationView{
			ID:        n.ID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			Payload:   n.Payload,
			CreatedAt: n.CreatedAt,
		}
	}
	return views, nil
}

// DemoSource serves the catalog's placeholder notifications. They are the
// same for every champion and are never stored.
type DemoSource struct {
	catalog   *catalog.Catalog
	createdAt time.Time
}

func NewDemoSource(c *catalog.Catalog) *DemoSource {
	return &DemoSource{catalog: c, createdAt: time.Now().UTC()}
}

func (d *DemoSource) List(ctx context.Context, championID uuid.UUID) ([]NotificationView, error) {
	if d.catalog == nil {
		return nil, nil
	}
	defs := d.catalog.DemoNotifications()
	views := make([]NotificationView, len(defs))
	for i, def := range defs {
		views[i] = NotificationView{
			ID:        DemoIDPrefix + def.Key,
			Type:      def.Type,
			Title:     def.Title,
			Message:   def.Message,
			CreatedAt: d.createdAt,
			Demo:      true,
		}
	}
	return views, nil
}

func isDemoID(id string) bool {
	return strings.HasPrefix(id, DemoIDPrefix)
}

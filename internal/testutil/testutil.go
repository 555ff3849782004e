package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite store private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises
	// writers the way SQLite expects.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Clock hands out strictly increasing timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// CreateChampion inserts a champion with the given credits.
func CreateChampion(t *testing.T, db *gorm.DB, name string, credits int) *models.Champion {
	t.Helper()
	c := &models.Champion{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		DisplayName: name,
		Credits:     credits,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create champion: %v", err)
	}
	return c
}

// CreateAdmin inserts a champion flagged as admin.
func CreateAdmin(t *testing.T, db *gorm.DB, name string) *models.Champion {
	t.Helper()
	c := &models.Champion{ID: uuid.New(), Email: name + "@example.com", DisplayName: name, IsAdmin: true}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return c
}

// CreatePanel inserts a panel with n indicators.
func CreatePanel(t *testing.T, db *gorm.DB, slug string, n int) (*models.Panel, []models.Indicator) {
	t.Helper()
	panel := &models.Panel{Slug: slug, Name: "Panel " + slug}
	if err := db.Create(panel).Error; err != nil {
		t.Fatalf("create panel: %v", err)
	}
	indicators := make([]models.Indicator, n)
	for i := range indicators {
		indicators[i] = models.Indicator{
			PanelID:  panel.ID,
			Slug:     fmt.Sprintf("%s-ind-%d", slug, i+1),
			Name:     fmt.Sprintf("Indicator %s %d", slug, i+1),
			Position: i,
		}
	}
	if n > 0 {
		if err := db.Create(&indicators).Error; err != nil {
			t.Fatalf("create indicators: %v", err)
		}
	}
	return panel, indicators
}

// Reload fetches the current champion row.
func Reload(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Champion {
	t.Helper()
	var c models.Champion
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		t.Fatalf("reload champion: %v", err)
	}
	return &c
}

// Count returns the row count for model filtered by query/args.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

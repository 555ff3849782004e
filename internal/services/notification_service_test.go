package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, championID uuid.UUID, title string) *models.Notification {
	t.Helper()
	n := &models.Notification{ChampionID: championID, Type: models.NotificationReviewAccepted, Title: title}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return n
}

func assertUnreadConsistent(t *testing.T, e *testEnv, championID uuid.UUID) {
	t.Helper()
	views, err := e.notifications.List(e.ctx, championID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	count, err := e.notifications.UnreadCount(e.ctx, championID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != countUnread(views) {
		t.Fatalf("UnreadCount = %d, list has %d unread", count, countUnread(views))
	}
}

func TestMergeSources(t *testing.T) {
	persisted := []NotificationView{{ID: "p1"}}
	demo := []NotificationView{{ID: "demo:a"}, {ID: "demo:b"}}

	if got := MergeSources(persisted, demo); len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("persisted present: %+v", got)
	}
	if got := MergeSources(nil, demo); len(got) != 2 {
		t.Fatalf("persisted empty: %+v", got)
	}
	if got := MergeSources(nil, nil); len(got) != 0 {
		t.Fatalf("both empty: %+v", got)
	}
}

func TestListFallsBackToDemo(t *testing.T) {
	e := newTestEnv(t)
	champion := testutil.CreateChampion(t, e.db, "ada", 0)

	views, err := e.notifications.List(e.ctx, champion.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 || !views[0].Demo || views[0].ID != DemoIDPrefix+"welcome" {
		t.Fatalf("demo views = %+v", views)
	}

	seedNotification(t, e.db, champion.ID, "real")
	views, err = e.notifications.List(e.ctx, champion.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].Demo {
		t.Fatalf("persisted views = %+v, want only the stored row", views)
	}
}

func TestMarkReadIsMonotonic(t *testing.T) {
	e := newTestEnv(t)
	champion := testutil.CreateChampion(t, e.db, "ada", 0)
	first := seedNotification(t, e.db, champion.ID, "first")
	seedNotification(t, e.db, champion.ID, "second")
	assertUnreadConsistent(t, e, champion.ID)

	if err := e.notifications.MarkRead(e.ctx, champion.ID, first.ID.String()); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := e.notifications.MarkRead(e.ctx, champion.ID, first.ID.String()); err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	assertUnreadConsistent(t, e, champion.ID)

	// A stale remote row must not resurrect the unread state.
	if err := e.db.Model(&models.Notification{}).Where("id = ?", first.ID).Update("read", false).Error; err != nil {
		t.Fatalf("force stale row: %v", err)
	}
	views, err := e.notifications.List(e.ctx, champion.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, v := range views {
		if v.ID == first.ID.String() && !v.Read {
			t.Fatal("locally read notification reported unread")
		}
	}
	if n, _ := e.notifications.UnreadCount(e.ctx, champion.ID); n != 1 {
		t.Fatalf("UnreadCount = %d, want 1", n)
	}

	// The cache is session scoped.
	e.hub.SignOut(champion.ID)
	if n, _ := e.notifications.UnreadCount(e.ctx, champion.ID); n != 2 {
		t.Fatalf("UnreadCount after sign-out = %d, want 2", n)
	}
}

func TestMarkAllRead(t *testing.T) {
	e := newTestEnv(t)
	ada := testutil.CreateChampion(t, e.db, "ada", 0)
	grace := testutil.CreateChampion(t, e.db, "grace", 0)
	seedNotification(t, e.db, ada.ID, "one")
	seedNotification(t, e.db, ada.ID, "two")
	seedNotification(t, e.db, grace.ID, "other")

	if err := e.notifications.MarkAllRead(e.ctx, ada.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	assertUnreadConsistent(t, e, ada.ID)
	if n, _ := e.notifications.UnreadCount(e.ctx, ada.ID); n != 0 {
		t.Fatalf("ada unread = %d, want 0", n)
	}
	if n := testutil.Count(t, e.db, &models.Notification{}, "champion_id = ? AND read = ?", ada.ID, true); n != 2 {
		t.Fatalf("persisted read rows = %d, want 2", n)
	}
	if n, _ := e.notifications.UnreadCount(e.ctx, grace.ID); n != 1 {
		t.Fatalf("grace unread = %d, want 1", n)
	}
}

func TestMarkReadDemoAndUnknown(t *testing.T) {
	e := newTestEnv(t)
	ada := testutil.CreateChampion(t, e.db, "ada", 0)
	grace := testutil.CreateChampion(t, e.db, "grace", 0)
	foreign := seedNotification(t, e.db, grace.ID, "not yours")

	if err := e.notifications.MarkRead(e.ctx, ada.ID, DemoIDPrefix+"welcome"); err != nil {
		t.Fatalf("MarkRead demo: %v", err)
	}
	if n, _ := e.notifications.UnreadCount(e.ctx, ada.ID); n != 1 {
		t.Fatalf("unread after demo read = %d, want 1", n)
	}
	assertUnreadConsistent(t, e, ada.ID)

	for _, id := range []string{DemoIDPrefix + "nope", "not-a-uuid", uuid.NewString(), foreign.ID.String()} {
		if err := e.notifications.MarkRead(e.ctx, ada.ID, id); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("MarkRead(%s) err = %v, want NOT_FOUND", id, err)
		}
	}
	if n := testutil.Count(t, e.db, &models.Notification{}, "id = ? AND read = ?", foreign.ID, true); n != 0 {
		t.Fatal("foreign notification was marked read")
	}
}

type failingSource struct{}

func (failingSource) List(context.Context, uuid.UUID) ([]NotificationView, error) {
	return nil, apperr.Store("list notifications", errors.New("connection refused"))
}

func TestListDegradesOnStoreFailure(t *testing.T) {
	e := newTestEnv(t)
	svc := NewNotificationService(e.db, failingSource{}, NewDemoSource(testDemo))

	views, err := svc.List(e.ctx, uuid.New())
	if err != nil {
		t.Fatalf("List err = %v, want degraded nil", err)
	}
	if len(views) != 0 {
		t.Fatalf("views = %+v, want empty", views)
	}
	if n, err := svc.UnreadCount(e.ctx, uuid.New()); err != nil || n != 0 {
		t.Fatalf("UnreadCount = %d, %v", n, err)
	}
}

// gatedSource blocks List until released, or until its context ends.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	views   []NotificationView
}

func (g *gatedSource) List(ctx context.Context, _ uuid.UUID) ([]NotificationView, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return g.views, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSharedFetchOutlivesCancelledCaller(t *testing.T) {
	e := newTestEnv(t)
	src := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		views:   []NotificationView{{ID: uuid.NewString(), Type: models.NotificationPeerUpvote, Title: "Upvoted"}},
	}
	svc := NewNotificationService(e.db, src, NewDemoSource(testDemo))
	championID := uuid.New()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	go svc.List(firstCtx, championID)
	<-src.started

	joined := make(chan []NotificationView, 1)
	go func() {
		views, _ := svc.List(context.Background(), championID)
		joined <- views
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(src.release)

	select {
	case views := <-joined:
		if len(views) != 1 || views[0].Demo {
			t.Fatalf("joined caller got %+v, want the persisted notification", views)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("joined caller never returned")
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx           context.Context
	db            *gorm.DB
	clock         *testutil.Clock
	hub           *identity.SessionHub
	progress      *ProgressService
	submissions   *SubmissionService
	moderation    *ModerationService
	ledger        *LedgerService
	votes         *VoteService
	reviews       *ReviewService
	notifications *NotificationService
	champions     *ChampionService
	dashboard     *DashboardService
}

var testDemo = catalog.New(catalog.File{
	DemoNotifications: []catalog.DemoNotificationDef{
		{Key: "welcome", Type: "welcome", Title: "Welcome", Message: "Pick a panel."},
		{Key: "credits", Type: "tip", Title: "How credits work", Message: "10 per review."},
	},
})

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, testutil.NewDB(t))
}

func newTestEnvOn(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	clk := testutil.NewClock()

	e := &testEnv{
		ctx:   context.Background(),
		db:    db,
		clock: clk,
		hub:   identity.NewSessionHub(),
	}
	e.progress = NewProgressService(db)
	e.progress.SetClock(clk.Now)
	e.submissions = NewSubmissionService(db, e.progress)
	e.submissions.SetClock(clk.Now)
	e.moderation = NewModerationService(db)
	e.moderation.SetClock(clk.Now)
	e.ledger = NewLedgerService(db)
	e.votes = NewVoteService(db)
	e.votes.SetClock(clk.Now)
	e.reviews = NewReviewService(db, e.progress)
	e.reviews.SetClock(clk.Now)
	e.notifications = NewNotificationService(db, NewPersistedSource(db), NewDemoSource(testDemo))
	e.notifications.SetClock(clk.Now)
	t.Cleanup(e.notifications.SubscribeSessions(e.hub))
	e.champions = NewChampionService(db, func(email, id string) bool { return email == "root@example.com" })
	e.dashboard = NewDashboardService(e.ledger, e.progress, e.notifications, e.submissions)
	return e
}

// submissionWithReviews opens a pending submission on panel and reviews the
// first n indicators.
func (e *testEnv) submissionWithReviews(t *testing.T, championID uuid.UUID, panel *models.Panel, indicators []models.Indicator, n int) *models.ReviewSubmission {
	t.Helper()

	sub, err := e.submissions.CreateSubmission(e.ctx, championID, panel.ID)
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	inputs := make([]IndicatorReviewInput, n)
	for i := 0; i < n; i++ {
		inputs[i] = IndicatorReviewInput{IndicatorID: indicators[i].ID, Rating: 3, Rationale: "disclosed"}
	}
	if n > 0 {
		if _, err := e.submissions.AttachIndicatorReviews(e.ctx, sub.ID, championID, inputs); err != nil {
			t.Fatalf("AttachIndicatorReviews: %v", err)
		}
	}
	return sub
}

func setCreatedAt(t *testing.T, db *gorm.DB, c *models.Champion, at time.Time) {
	t.Helper()
	if err := db.Model(&models.Champion{}).Where("id = ?", c.ID).UpdateColumn("created_at", at).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
}

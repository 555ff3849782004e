package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestPendingIndexAllowsOnePendingPerPair(t *testing.T) {
	db := testutil.NewDB(t)
	champion := testutil.CreateChampion(t, db, "ada", 0)
	panel, _ := testutil.CreatePanel(t, db, "water", 1)

	first := models.ReviewSubmission{ChampionID: champion.ID, PanelID: panel.ID, Status: models.SubmissionPending, SubmittedAt: time.Now()}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := models.ReviewSubmission{ChampionID: champion.ID, PanelID: panel.ID, Status: models.SubmissionPending, SubmittedAt: time.Now()}
	err := db.Create(&second).Error
	if !database.IsUniqueViolation(err) {
		t.Fatalf("second pending insert err = %v, want unique violation", err)
	}

	// Terminal rows do not count against the index.
	if err := db.Model(&first).Update("status", models.SubmissionApproved).Error; err != nil {
		t.Fatalf("approve first: %v", err)
	}
	third := models.ReviewSubmission{ChampionID: champion.ID, PanelID: panel.ID, Status: models.SubmissionPending, SubmittedAt: time.Now()}
	if err := db.Create(&third).Error; err != nil {
		t.Fatalf("create after terminal: %v", err)
	}
}

func TestCreditEntrySourceIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	champion := testutil.CreateChampion(t, db, "ada", 0)
	source := uuid.NewString()

	entry := models.CreditEntry{ChampionID: champion.ID, Kind: models.CreditReview, Amount: 10, SourceType: "submission", SourceID: source}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create entry: %v", err)
	}
	dup := models.CreditEntry{ChampionID: champion.ID, Kind: models.CreditReview, Amount: 10, SourceType: "submission", SourceID: source}
	if err := db.Create(&dup).Error; !database.IsUniqueViolation(err) {
		t.Fatalf("duplicate entry err = %v, want unique violation", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if database.IsUniqueViolation(nil) {
		t.Fatal("nil is not a violation")
	}
	if database.IsUniqueViolation(errors.New("connection reset")) {
		t.Fatal("unrelated error is not a violation")
	}
	if !database.IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "x" (SQLSTATE 23505)`)) {
		t.Fatal("postgres duplicate key message should match")
	}
}

func TestPing(t *testing.T) {
	db := testutil.NewDB(t)
	if err := database.Ping(db); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestSubmitReview(t *testing.T) {
	e := newTestEnv(t)
	champion := testutil.CreateChampion(t, e.db, "ada", 0)
	panel, indicators := testutil.CreatePanel(t, e.db, "climate", 2)

	first, err := e.reviews.SubmitReview(e.ctx, champion.ID, indicators[0].ID, 5, " thorough ")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if first.Status != models.ReviewPending || first.Rationale != "thorough" {
		t.Fatalf("review = %+v", first)
	}
	second, err := e.reviews.SubmitReview(e.ctx, champion.ID, indicators[1].ID, 0, "")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	list, err := e.reviews.ListReviews(e.ctx, champion.ID)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("ListReviews = %+v, want newest first", list)
	}
	if n := testutil.Count(t, e.db, &models.ActivityEvent{}, "type = ? AND panel_id = ?", models.ActivitySubmitReview, panel.ID); n != 2 {
		t.Fatalf("submit_review events = %d, want 2", n)
	}
}

func TestSubmitReviewRejects(t *testing.T) {
	e := newTestEnv(t)
	champion := testutil.CreateChampion(t, e.db, "ada", 0)
	_, indicators := testutil.CreatePanel(t, e.db, "climate", 1)

	if _, err := e.reviews.SubmitReview(e.ctx, champion.ID, indicators[0].ID, 9, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("rating err = %v", err)
	}
	if _, err := e.reviews.SubmitReview(e.ctx, champion.ID, indicators[0].ID, 1, strings.Repeat("é", MaxRationaleLen+1)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("rationale err = %v", err)
	}
	if _, err := e.reviews.SubmitReview(e.ctx, champion.ID, uuid.New(), 1, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("indicator err = %v", err)
	}
}

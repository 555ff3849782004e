package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
)

func assertReconciles(t *testing.T, s *Score) {
	t.Helper()
	b := s.Breakdown
	if s.Total != b.Reviews+b.Votes+b.Participation || s.Total != b.Total() {
		t.Fatalf("score %d does not reconcile with breakdown %+v", s.Total, b)
	}
	sum := 0
	for _, entry := range s.Entries {
		sum += entry.Amount
	}
	if sum != s.Total {
		t.Fatalf("entries sum %d, want %d", sum, s.Total)
	}
}

func TestComputeScoreReconciles(t *testing.T) {
	e := newTestEnv(t)
	ada := testutil.CreateChampion(t, e.db, "ada", 0)
	grace := testutil.CreateChampion(t, e.db, "grace", 0)
	admin := testutil.CreateAdmin(t, e.db, "root")
	panel, indicators := testutil.CreatePanel(t, e.db, "climate", 3)

	sub := e.submissionWithReviews(t, ada.ID, panel, indicators, 3)
	if _, err := e.moderation.Approve(e.ctx, sub.ID, admin.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := e.votes.CastVote(e.ctx, grace.ID, models.VoteTargetSubmission, sub.ID, models.VoteUp); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if _, err := e.moderation.AdjustCredits(e.ctx, ada.ID, admin.ID, 7, "event attendance"); err != nil {
		t.Fatalf("AdjustCredits: %v", err)
	}

	score, err := e.ledger.ComputeScore(e.ctx, ada.ID)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	want := Breakdown{Reviews: 30, Votes: VoteCredits, Participation: 7}
	if score.Total != 39 || score.Breakdown != want {
		t.Fatalf("score = %d %+v, want 39 %+v", score.Total, score.Breakdown, want)
	}
	assertReconciles(t, score)

	for _, id := range []uuid.UUID{grace.ID, admin.ID} {
		s, err := e.ledger.ComputeScore(e.ctx, id)
		if err != nil {
			t.Fatalf("ComputeScore(%s): %v", id, err)
		}
		assertReconciles(t, s)
	}
}

func TestComputeScoreNegativeParticipation(t *testing.T) {
	e := newTestEnv(t)
	ada := testutil.CreateChampion(t, e.db, "ada", 0)
	admin := testutil.CreateAdmin(t, e.db, "root")
	panel, indicators := testutil.CreatePanel(t, e.db, "climate", 1)

	sub := e.submissionWithReviews(t, ada.ID, panel, indicators, 1)
	if _, err := e.moderation.Approve(e.ctx, sub.ID, admin.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := e.moderation.AdjustCredits(e.ctx, ada.ID, admin.ID, -25, "clawback"); err != nil {
		t.Fatalf("AdjustCredits: %v", err)
	}

	score, err := e.ledger.ComputeScore(e.ctx, ada.ID)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if score.Total != -15 || score.Breakdown.Participation != -25 {
		t.Fatalf("score = %d %+v", score.Total, score.Breakdown)
	}
	assertReconciles(t, score)
}

func TestComputeScoreUnknownChampion(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.ledger.ComputeScore(e.ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestRank(t *testing.T) {
	e := newTestEnv(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	early := testutil.CreateChampion(t, e.db, "early", 50)
	late := testutil.CreateChampion(t, e.db, "late", 50)
	top := testutil.CreateChampion(t, e.db, "top", 90)
	low := testutil.CreateChampion(t, e.db, "low", 0)
	setCreatedAt(t, e.db, early, base)
	setCreatedAt(t, e.db, late, base.Add(time.Hour))
	setCreatedAt(t, e.db, top, base.Add(2*time.Hour))
	setCreatedAt(t, e.db, low, base.Add(-time.Hour))

	want := map[uuid.UUID]int{top.ID: 1, early.ID: 2, late.ID: 3, low.ID: 4}
	for id, rank := range want {
		got, err := e.ledger.Rank(e.ctx, id)
		if err != nil {
			t.Fatalf("Rank: %v", err)
		}
		if got == nil || *got != rank {
			t.Fatalf("Rank(%s) = %v, want %d", id, got, rank)
		}
	}

	missing, err := e.ledger.Rank(e.ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("Rank(missing) = %v, %v; want nil, nil", missing, err)
	}

	board, err := e.ledger.Leaderboard(e.ctx, 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 3 || board[0].ChampionID != top.ID || board[1].ChampionID != early.ID || board[2].Rank != 3 {
		t.Fatalf("leaderboard = %+v", board)
	}
}

package services

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestVoteFlipsAwardOnce(t *testing.T) {
	e := newTestEnv(t)
	owner := testutil.CreateChampion(t, e.db, "ada", 0)
	voter := testutil.CreateChampion(t, e.db, "grace", 0)
	panel, _ := testutil.CreatePanel(t, e.db, "climate", 1)
	sub, err := e.submissions.CreateSubmission(e.ctx, owner.ID, panel.ID)
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	var voteID uuid.UUID
	for i, value := range []models.VoteValue{models.VoteUp, models.VoteDown, models.VoteUp} {
		vote, err := e.votes.CastVote(e.ctx, voter.ID, models.VoteTargetSubmission, sub.ID, value)
		if err != nil {
			t.Fatalf("CastVote %d: %v", i, err)
		}
		if vote.Value != value || vote.TargetOwnerID != owner.ID {
			t.Fatalf("vote %d = %+v", i, vote)
		}
		if i == 0 {
			voteID = vote.ID
		} else if vote.ID != voteID {
			t.Fatalf("vote %d id = %s, want overwrite of %s", i, vote.ID, voteID)
		}
	}

	if n := testutil.Count(t, e.db, &models.Vote{}, ""); n != 1 {
		t.Fatalf("vote rows = %d, want 1", n)
	}
	if c := testutil.Reload(t, e.db, owner.ID); c.Credits != VoteCredits {
		t.Fatalf("owner credits = %d, want %d", c.Credits, VoteCredits)
	}
	if n := testutil.Count(t, e.db, &models.Notification{}, "type = ?", models.NotificationPeerUpvote); n != 1 {
		t.Fatalf("upvote notifications = %d, want 1", n)
	}
}

func TestDownvoteAwardsNothing(t *testing.T) {
	e := newTestEnv(t)
	owner := testutil.CreateChampion(t, e.db, "ada", 0)
	voter := testutil.CreateChampion(t, e.db, "grace", 0)
	_, indicators := testutil.CreatePanel(t, e.db, "climate", 1)
	review, err := e.reviews.SubmitReview(e.ctx, owner.ID, indicators[0].ID, 3, "")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	if _, err := e.votes.CastVote(e.ctx, voter.ID, models.VoteTargetReview, review.ID, models.VoteDown); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if c := testutil.Reload(t, e.db, owner.ID); c.Credits != 0 {
		t.Fatalf("owner credits = %d, want 0", c.Credits)
	}
}

func TestCastVoteRejects(t *testing.T) {
	e := newTestEnv(t)
	owner := testutil.CreateChampion(t, e.db, "ada", 0)
	voter := testutil.CreateChampion(t, e.db, "grace", 0)
	panel, _ := testutil.CreatePanel(t, e.db, "climate", 1)
	sub, err := e.submissions.CreateSubmission(e.ctx, owner.ID, panel.ID)
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	cases := []struct {
		name       string
		voter      uuid.UUID
		targetType string
		targetID   uuid.UUID
		value      models.VoteValue
		want       error
	}{
		{"self vote", owner.ID, models.VoteTargetSubmission, sub.ID, models.VoteUp, apperr.ErrValidation},
		{"bad value", voter.ID, models.VoteTargetSubmission, sub.ID, "meh", apperr.ErrValidation},
		{"bad target type", voter.ID, "panel", panel.ID, models.VoteUp, apperr.ErrValidation},
		{"missing target", voter.ID, models.VoteTargetReview, uuid.New(), models.VoteUp, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.votes.CastVote(e.ctx, tc.voter, tc.targetType, tc.targetID, tc.value)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if n := testutil.Count(t, e.db, &models.Vote{}, ""); n != 0 {
		t.Fatalf("vote rows = %d, want 0", n)
	}
}

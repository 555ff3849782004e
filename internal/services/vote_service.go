package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrVoteTargetNotFound = apperr.NotFound("vote target not found")

type VoteService struct {
	clock
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// CastVote records or overwrites the voter's opinion of a peer's submission
// or review. The first time a vote row turns up, its owner earns
// VoteCredits; flipping the same vote back and forth earns nothing more.
func (s *VoteService) CastVote(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID, value models.VoteValue) (_ *models.Vote, err error) {
	ctx, span := startSpan(ctx, "vote.Cast",
		attribute.String("target_type", targetType),
		attribute.String("target_id", targetID.String()),
		attribute.String("value", string(value)),
	)
	defer endSpan(span, &err)

	if value != models.VoteUp && value != models.VoteDown {
		return nil, apperr.Validation("value must be up or down")
	}

	now := s.timeNow()
	var vote models.Vote

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := voteTargetOwner(tx, targetType, targetID)
		if err != nil {
			return err
		}
		if ownerID == voterID {
			return apperr.Validation("cannot vote on your own work")
		}

		row := models.Vote{
			TargetType:    targetType,
			TargetID:      targetID,
			VoterID:       voterID,
			TargetOwnerID: ownerID,
			Value:         value,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "target_type"}, {Name: "target_id"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return apperr.Store("upsert vote", err)
		}

		// On conflict the stored row keeps its original id.
		if err := tx.Where("target_type = ? AND target_id = ? AND voter_id = ?", targetType, targetID, voterID).
			First(&vote).Error; err != nil {
			return apperr.Store("reload vote", err)
		}
		if vote.Value != models.VoteUp {
			return nil
		}

		var credited int64
		if err := tx.Model(&models.CreditEntry{}).
			Where("source_type = ? AND source_id = ?", "vote", vote.ID.String()).
			Count(&credited).Error; err != nil {
			return apperr.Store("check vote credit", err)
		}
		if credited > 0 {
			return nil
		}

		if err := applyCredit(tx, ownerID, models.CreditVote, VoteCredits, "vote", vote.ID.String(), now); err != nil {
			return err
		}
		return insertNotification(tx, &models.Notification{
			ChampionID: ownerID,
			Type:       models.NotificationPeerUpvote,
			Title:      "A peer upvoted your work",
			Message:    "Another champion found your review useful: +2 credits.",
			Payload: datatypes.JSONMap{
				"target_type": targetType,
				"target_id":   targetID.String(),
				"credits":     VoteCredits,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func voteTargetOwner(tx *gorm.DB, targetType string, targetID uuid.UUID) (uuid.UUID, error) {
	var model interface{}
	switch targetType {
	case models.VoteTargetSubmission:
		model = &models.ReviewSubmission{}
	case models.VoteTargetReview:
		model = &models.Review{}
	default:
		return uuid.Nil, apperr.Validation("target_type must be submission or review")
	}

	var owner struct{ ChampionID uuid.UUID }
	res := tx.Model(model).Select("champion_id").Where("id = ?", targetID).Limit(1).Scan(&owner)
	if res.Error != nil {
		return uuid.Nil, apperr.Store("load vote target", res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, ErrVoteTargetNotFound
	}
	return owner.ChampionID, nil
}

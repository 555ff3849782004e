package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrReviewNotFound = apperr.NotFound("review not found")

// ModerationService moves submissions and single reviews out of pending.
// Every transition is a conditional update on status; the credit award,
// audit record and notification commit with it or not at all.
type ModerationService struct {
	clock
	db *gorm.DB
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

func validateNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len(note) > MaxAdminNoteLen {
		return "", apperr.Validation(fmt.Sprintf("note must be at most %d characters", MaxAdminNoteLen))
	}
	return note, nil
}

// Approve credits the submission's author ReviewCredits per indicator
// review. A submission that is no longer pending is returned as-is together
// with an INVALID_STATE error.
func (s *ModerationService) Approve(ctx context.Context, submissionID, adminID uuid.UUID, comment string) (_ *models.ReviewSubmission, err error) {
	return s.decideSubmission(ctx, submissionID, adminID, comment, models.SubmissionApproved)
}

// Reject closes the submission without credits.
func (s *ModerationService) Reject(ctx context.Context, submissionID, adminID uuid.UUID, reason string) (_ *models.ReviewSubmission, err error) {
	return s.decideSubmission(ctx, submissionID, adminID, reason, models.SubmissionRejected)
}

func (s *ModerationService) decideSubmission(ctx context.Context, submissionID, adminID uuid.UUID, note string, to models.SubmissionStatus) (_ *models.ReviewSubmission, err error) {
	ctx, span := startSpan(ctx, "moderation.DecideSubmission",
		attribute.String("submission_id", submissionID.String()),
		attribute.String("to", string(to)),
	)
	defer endSpan(span, &err)

	note, err = validateNote(note)
	if err != nil {
		return nil, err
	}

	now := s.timeNow()
	var sub models.ReviewSubmission
	var credits int

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ReviewSubmission{}).
			Where("id = ? AND status = ?", submissionID, models.SubmissionPending).
			Updates(map[string]interface{}{
				"status":      to,
				"reviewed_at": now,
				"reviewer_id": adminID,
				"admin_note":  note,
				"updated_at":  now,
			})
		if res.Error != nil {
			return apperr.Store("update submission status", res.Error)
		}

		if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return apperr.Store("load submission", err)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState(fmt.Sprintf("submission already %s", sub.Status))
		}

		var panel models.Panel
		if err := tx.Select("id", "name").First(&panel, "id = ?", sub.PanelID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Store("load panel", err)
		}

		action := models.ActionRejectSubmission
		notification := models.Notification{
			ChampionID: sub.ChampionID,
			Type:       models.NotificationReviewRejected,
			Title:      "Submission not accepted",
			Message:    fmt.Sprintf("Your review of %s was not accepted.", panelLabel(panel)),
		}

		if to == models.SubmissionApproved {
			action = models.ActionApproveSubmission

			var reviews int64
			if err := tx.Model(&models.IndicatorReview{}).Where("submission_id = ?", submissionID).Count(&reviews).Error; err != nil {
				return apperr.Store("count indicator reviews", err)
			}
			credits = ReviewCredits * int(reviews)
			if credits > 0 {
				if err := applyCredit(tx, sub.ChampionID, models.CreditReview, credits, "submission", submissionID.String(), now); err != nil {
					return err
				}
			}

			notification.Type = models.NotificationReviewAccepted
			notification.Title = "Submission approved"
			notification.Message = fmt.Sprintf("Your review of %s was approved: +%d credits.", panelLabel(panel), credits)
		}

		if err := recordAdminAction(tx, adminID, action, "submission", submissionID.String(), datatypes.JSONMap{
			"champion_id": sub.ChampionID.String(),
			"note":        note,
			"credits":     credits,
		}, now); err != nil {
			return err
		}

		notification.Payload = datatypes.JSONMap{
			"submission_id": submissionID.String(),
			"panel_id":      sub.PanelID.String(),
			"panel_name":    panel.Name,
			"comment":       note,
			"credits":       credits,
		}
		notification.CreatedAt = now
		return insertNotification(tx, &notification)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidState) {
			return &sub, err
		}
		return nil, err
	}

	slog.InfoContext(ctx, "submission moderated",
		"submission_id", submissionID.String(),
		"champion_id", sub.ChampionID.String(),
		"action", string(to),
		"credits", credits,
	)
	return &sub, nil
}

func panelLabel(p models.Panel) string {
	if p.Name == "" {
		return "the panel"
	}
	return p.Name
}

// AcceptReview credits a single review once. The AcceptedReview row is
// keyed by review id, so a replay cannot award twice.
func (s *ModerationService) AcceptReview(ctx context.Context, reviewID, adminID uuid.UUID, comment string) (_ *models.Review, err error) {
	return s.decideReview(ctx, reviewID, adminID, comment, models.ReviewAccepted)
}

func (s *ModerationService) RejectReview(ctx context.Context, reviewID, adminID uuid.UUID, reason string) (_ *models.Review, err error) {
	return s.decideReview(ctx, reviewID, adminID, reason, models.ReviewRejected)
}

func (s *ModerationService) decideReview(ctx context.Context, reviewID, adminID uuid.UUID, note string, to models.ReviewStatus) (_ *models.Review, err error) {
	ctx, span := startSpan(ctx, "moderation.DecideReview",
		attribute.String("review_id", reviewID.String()),
		attribute.String("to", string(to)),
	)
	defer endSpan(span, &err)

	note, err = validateNote(note)
	if err != nil {
		return nil, err
	}

	now := s.timeNow()
	var review models.Review
	var credits int

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).
			Where("id = ? AND status = ?", reviewID, models.ReviewPending).
			Updates(map[string]interface{}{
				"status":      to,
				"reviewed_at": now,
				"reviewer_id": adminID,
				"admin_note":  note,
				"updated_at":  now,
			})
		if res.Error != nil {
			return apperr.Store("update review status", res.Error)
		}

		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return apperr.Store("load review", err)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState(fmt.Sprintf("review already %s", review.Status))
		}

		action := models.ActionRejectReview
		notification := models.Notification{
			ChampionID: review.ChampionID,
			Type:       models.NotificationReviewRejected,
			Title:      "Review not accepted",
			Message:    "One of your indicator reviews was not accepted.",
		}

		if to == models.ReviewAccepted {
			action = models.ActionAcceptReview
			credits = ReviewCredits

			accepted := models.AcceptedReview{
				ReviewID:   reviewID,
				ChampionID: review.ChampionID,
				AdminID:    adminID,
				Credits:    credits,
				CreatedAt:  now,
			}
			if err := tx.Create(&accepted).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return apperr.WithMetadata(apperr.CodeConflict, "review already credited",
						map[string]string{"review_id": reviewID.String()})
				}
				return apperr.Store("insert accepted review", err)
			}
			if err := applyCredit(tx, review.ChampionID, models.CreditReview, credits, "review", reviewID.String(), now); err != nil {
				return err
			}

			notification.Type = models.NotificationReviewAccepted
			notification.Title = "Review accepted"
			notification.Message = fmt.Sprintf("One of your indicator reviews was accepted: +%d credits.", credits)
		}

		if err := recordAdminAction(tx, adminID, action, "review", reviewID.String(), datatypes.JSONMap{
			"champion_id": review.ChampionID.String(),
			"note":        note,
			"credits":     credits,
		}, now); err != nil {
			return err
		}

		notification.Payload = datatypes.JSONMap{
			"review_id":    reviewID.String(),
			"indicator_id": review.IndicatorID.String(),
			"comment":      note,
			"credits":      credits,
		}
		notification.CreatedAt = now
		return insertNotification(tx, &notification)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidState) {
			return &review, err
		}
		return nil, err
	}

	slog.InfoContext(ctx, "review moderated",
		"review_id", reviewID.String(),
		"champion_id", review.ChampionID.String(),
		"action", string(to),
		"credits", credits,
	)
	return &review, nil
}

// AdjustCredits applies an explicit signed correction to a balance.
func (s *ModerationService) AdjustCredits(ctx context.Context, championID, adminID uuid.UUID, amount int, reason string) (_ *models.Champion, err error) {
	ctx, span := startSpan(ctx, "moderation.AdjustCredits",
		attribute.String("champion_id", championID.String()),
		attribute.Int("amount", amount),
	)
	defer endSpan(span, &err)

	if amount == 0 {
		return nil, apperr.Validation("amount must be non-zero")
	}
	reason, err = validateNote(reason)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, apperr.Validation("reason is required")
	}

	now := s.timeNow()
	var champion models.Champion

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entryRef := uuid.NewString()
		if err := applyCredit(tx, championID, models.CreditCorrection, amount, "correction", entryRef, now); err != nil {
			return err
		}
		if err := recordAdminAction(tx, adminID, models.ActionAdjustCredits, "champion", championID.String(), datatypes.JSONMap{
			"amount": amount,
			"reason": reason,
			"ref":    entryRef,
		}, now); err != nil {
			return err
		}
		notification := models.Notification{
			ChampionID: championID,
			Type:       models.NotificationCreditAdjusted,
			Title:      "Credits adjusted",
			Message:    fmt.Sprintf("An administrator adjusted your balance by %+d credits.", amount),
			Payload:    datatypes.JSONMap{"amount": amount, "reason": reason},
			CreatedAt:  now,
		}
		if err := insertNotification(tx, &notification); err != nil {
			return err
		}
		if err := tx.First(&champion, "id = ?", championID).Error; err != nil {
			return apperr.Store("reload champion", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "credits adjusted",
		"champion_id", championID.String(),
		"action", models.ActionAdjustCredits,
		"amount", amount,
	)
	return &champion, nil
}

// ListAdminActions returns the audit trail, newest first. Empty filters
// match everything.
func (s *ModerationService) ListAdminActions(ctx context.Context, targetType, targetID string, limit int) (_ []models.AdminAction, err error) {
	ctx, span := startSpan(ctx, "moderation.ListAdminActions", attribute.String("target_type", targetType))
	defer endSpan(span, &err)

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.AdminAction{})
	if targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}

	var actions []models.AdminAction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&actions).Error; err != nil {
		return nil, apperr.Store("list admin actions", err)
	}
	return actions, nil
}

func recordAdminAction(tx *gorm.DB, adminID uuid.UUID, actionType, targetType, targetID string, details datatypes.JSONMap, at time.Time) error {
	action := models.AdminAction{
		AdminID:    adminID,
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  at,
	}
	if err := tx.Create(&action).Error; err != nil {
		return apperr.Store("insert admin action", err)
	}
	return nil
}

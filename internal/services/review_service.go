package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var ErrIndicatorNotFound = apperr.NotFound("indicator not found")

// ReviewService handles single-indicator reviews outside a submission.
type ReviewService struct {
	clock
	db       *gorm.DB
	progress *ProgressService
}

func NewReviewService(db *gorm.DB, progress *ProgressService) *ReviewService {
	return &ReviewService{db: db, progress: progress}
}

func (s *ReviewService) SubmitReview(ctx context.Context, championID, indicatorID uuid.UUID, rating int, rationale string) (_ *models.Review, err error) {
	ctx, span := startSpan(ctx, "review.Submit", attribute.String("indicator_id", indicatorID.String()))
	defer endSpan(span, &err)

	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := validateRationale(rationale); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var ind models.Indicator
	if err := db.First(&ind, "id = ?", indicatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndicatorNotFound
		}
		return nil, apperr.Store("load indicator", err)
	}

	now := s.timeNow()
	review := models.Review{
		ChampionID:  championID,
		IndicatorID: indicatorID,
		Rating:      rating,
		Rationale:   strings.TrimSpace(rationale),
		Status:      models.ReviewPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, apperr.Store("create review", err)
	}

	s.progress.RecordActivity(ctx, championID, models.ActivitySubmitReview, &ind.PanelID, &indicatorID,
		map[string]interface{}{"review_id": review.ID.String()})
	return &review, nil
}

// ListReviews returns the champion's single reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, championID uuid.UUID) (_ []models.Review, err error) {
	ctx, span := startSpan(ctx, "review.ListReviews", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	var reviews []models.Review
	if err := s.db.WithContext(ctx).
		Where("champion_id = ?", championID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, apperr.Store("list reviews", err)
	}
	return reviews, nil
}

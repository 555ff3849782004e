package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSubmissionNotFound = apperr.NotFound("submission not found")

type IndicatorReviewInput struct {
	IndicatorID uuid.UUID `json:"indicator_id"`
	Rating      int       `json:"rating"`
	IsImportant bool      `json:"is_important"`
	Rationale   string    `json:"rationale"`
	Tags        []string  `json:"tags"`
}

// ReviewedIndicator is an indicator review with its indicator's display data.
type ReviewedIndicator struct {
	models.IndicatorReview
	IndicatorName string `json:"indicator_name"`
	Position      int    `json:"position"`
}

type SubmissionDetail struct {
	Submission models.ReviewSubmission `json:"submission"`
	PanelName  string                  `json:"panel_name"`
	Reviews    []ReviewedIndicator     `json:"reviews"`
}

type SubmissionService struct {
	clock
	db       *gorm.DB
	progress *ProgressService
}

func NewSubmissionService(db *gorm.DB, progress *ProgressService) *SubmissionService {
	return &SubmissionService{db: db, progress: progress}
}

func pendingConflict(id uuid.UUID) error {
	return apperr.WithMetadata(apperr.CodeConflict,
		"a pending submission already exists for this panel",
		map[string]string{"submission_id": id.String()})
}

// CreateSubmission opens a pending submission for the champion on a panel.
func (s *SubmissionService) CreateSubmission(ctx context.Context, championID, panelID uuid.UUID) (_ *models.ReviewSubmission, err error) {
	ctx, span := startSpan(ctx, "submission.Create",
		attribute.String("champion_id", championID.String()),
		attribute.String("panel_id", panelID.String()),
	)
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	var panel models.Panel
	if err := db.Select("id").First(&panel, "id = ?", panelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrPanelNotFound
		}
		return nil, apperr.Store("load panel", err)
	}

	if existing, err := s.findPending(db, championID, panelID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, pendingConflict(existing.ID)
	}

	now := s.timeNow()
	sub := models.ReviewSubmission{
		ChampionID:  championID,
		PanelID:     panelID,
		Status:      models.SubmissionPending,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&sub).Error; err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent create for the same pair.
			if existing, findErr := s.findPending(db, championID, panelID); findErr == nil && existing != nil {
				return nil, pendingConflict(existing.ID)
			}
			return nil, apperr.New(apperr.CodeConflict, "a pending submission already exists for this panel")
		}
		return nil, apperr.Store("create submission", err)
	}

	s.progress.RecordActivity(ctx, championID, models.ActivityStartSubmission, &panelID, nil,
		map[string]interface{}{"submission_id": sub.ID.String()})

	return &sub, nil
}

func (s *SubmissionService) findPending(db *gorm.DB, championID, panelID uuid.UUID) (*models.ReviewSubmission, error) {
	var sub models.ReviewSubmission
	err := db.Where("champion_id = ? AND panel_id = ? AND status = ?", championID, panelID, models.SubmissionPending).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Store("load pending submission", err)
	}
	return &sub, nil
}

// AttachIndicatorReviews adds a batch of indicator reviews to a pending
// submission. Either every row is written or none is.
func (s *SubmissionService) AttachIndicatorReviews(ctx context.Context, submissionID, championID uuid.UUID, inputs []IndicatorReviewInput) (_ []models.IndicatorReview, err error) {
	ctx, span := startSpan(ctx, "submission.AttachIndicatorReviews",
		attribute.String("submission_id", submissionID.String()),
		attribute.Int("count", len(inputs)),
	)
	defer endSpan(span, &err)

	rows, err := s.buildReviewRows(submissionID, championID, inputs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].IndicatorID
	}

	var panelID uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Moderation's conditional update waits on this lock, so the review
		// count it credits includes every row written here.
		var sub models.ReviewSubmission
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).First(&sub, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return apperr.Store("load submission", err)
		}
		if sub.ChampionID != championID {
			return ErrSubmissionNotFound
		}
		if sub.Status != models.SubmissionPending {
			return apperr.InvalidState(fmt.Sprintf("submission is %s", sub.Status))
		}
		panelID = sub.PanelID

		var inPanel int64
		if err := tx.Model(&models.Indicator{}).
			Where("id IN ? AND panel_id = ?", ids, sub.PanelID).
			Count(&inPanel).Error; err != nil {
			return apperr.Store("check indicators", err)
		}
		if int(inPanel) != len(ids) {
			return apperr.Validation("every indicator must belong to the submission's panel")
		}

		var existing int64
		if err := tx.Model(&models.IndicatorReview{}).
			Where("submission_id = ? AND indicator_id IN ?", submissionID, ids).
			Count(&existing).Error; err != nil {
			return apperr.Store("check existing reviews", err)
		}
		if existing > 0 {
			return apperr.New(apperr.CodeConflict, "an indicator in this batch is already reviewed")
		}

		if err := tx.Create(&rows).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.New(apperr.CodeConflict, "an indicator in this batch is already reviewed")
			}
			return apperr.Store("insert indicator reviews", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range rows {
		indicatorID := rows[i].IndicatorID
		s.progress.RecordActivity(ctx, championID, models.ActivityReviewIndicator, &panelID, &indicatorID,
			map[string]interface{}{"submission_id": submissionID.String(), "rating": rows[i].Rating})
	}
	return rows, nil
}

func (s *SubmissionService) buildReviewRows(submissionID, championID uuid.UUID, inputs []IndicatorReviewInput) ([]models.IndicatorReview, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("at least one indicator review is required")
	}

	now := s.timeNow()
	seen := make(map[uuid.UUID]bool, len(inputs))
	rows := make([]models.IndicatorReview, 0, len(inputs))
	for _, in := range inputs {
		if in.IndicatorID == uuid.Nil {
			return nil, apperr.Validation("indicator_id is required")
		}
		if seen[in.IndicatorID] {
			return nil, apperr.Validation("indicator repeated within the batch")
		}
		seen[in.IndicatorID] = true

		if err := validateRating(in.Rating); err != nil {
			return nil, err
		}
		if err := validateRationale(in.Rationale); err != nil {
			return nil, err
		}
		tags := normalizeTags(in.Tags)
		if len(tags) > MaxTagsPerReview {
			return nil, apperr.Validation(fmt.Sprintf("at most %d tags per indicator", MaxTagsPerReview))
		}
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, apperr.Validation("invalid tags")
		}

		rows = append(rows, models.IndicatorReview{
			SubmissionID: submissionID,
			IndicatorID:  in.IndicatorID,
			ChampionID:   championID,
			Rating:       in.Rating,
			IsImportant:  in.IsImportant,
			Rationale:    strings.TrimSpace(in.Rationale),
			Tags:         raw,
			CreatedAt:    now,
		})
	}
	return rows, nil
}

func validateRating(rating int) error {
	if rating < 0 || rating > MaxRating {
		return apperr.Validation(fmt.Sprintf("rating must be between 0 and %d", MaxRating))
	}
	return nil
}

func validateRationale(rationale string) error {
	if utf8.RuneCountInString(strings.TrimSpace(rationale)) > MaxRationaleLen {
		return apperr.Validation(fmt.Sprintf("rationale must be at most %d characters", MaxRationaleLen))
	}
	return nil
}

// normalizeTags composes, case-folds and dedupes tags, keeping first-seen
// order and dropping blanks.
func normalizeTags(tags []string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.Join(strings.Fields(norm.NFC.String(t)), " ")
		if t == "" {
			continue
		}
		t = fold.String(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// GetSubmissionWithReviews returns the submission with its reviews in
// indicator display order.
func (s *SubmissionService) GetSubmissionWithReviews(ctx context.Context, submissionID uuid.UUID) (_ *SubmissionDetail, err error) {
	ctx, span := startSpan(ctx, "submission.Get", attribute.String("submission_id", submissionID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	var sub models.ReviewSubmission
	if err := db.First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, apperr.Store("load submission", err)
	}

	var panel models.Panel
	if err := db.Preload("Indicators").First(&panel, "id = ?", sub.PanelID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Store("load panel", err)
	}
	indicators := make(map[uuid.UUID]models.Indicator, len(panel.Indicators))
	for _, ind := range panel.Indicators {
		indicators[ind.ID] = ind
	}

	var reviews []models.IndicatorReview
	if err := db.Where("submission_id = ?", submissionID).Find(&reviews).Error; err != nil {
		return nil, apperr.Store("load indicator reviews", err)
	}

	detail := &SubmissionDetail{
		Submission: sub,
		PanelName:  panel.Name,
		Reviews:    make([]ReviewedIndicator, len(reviews)),
	}
	for i, r := range reviews {
		ind := indicators[r.IndicatorID]
		detail.Reviews[i] = ReviewedIndicator{IndicatorReview: r, IndicatorName: ind.Name, Position: ind.Position}
	}
	slices.SortStableFunc(detail.Reviews, func(a, b ReviewedIndicator) int {
		return a.Position - b.Position
	})
	return detail, nil
}

// ListForChampion returns the champion's submissions, newest first.
func (s *SubmissionService) ListForChampion(ctx context.Context, championID uuid.UUID) (_ []models.ReviewSubmission, err error) {
	ctx, span := startSpan(ctx, "submission.ListForChampion", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	var subs []models.ReviewSubmission
	if err := s.db.WithContext(ctx).
		Where("champion_id = ?", championID).
		Order("created_at DESC, id DESC").
		Find(&subs).Error; err != nil {
		return nil, apperr.Store("list submissions", err)
	}
	return subs, nil
}

// ListForAdmin pages through submissions in any champion's name, newest
// first. An empty status lists every status.
func (s *SubmissionService) ListForAdmin(ctx context.Context, status string, limit, offset int) (_ []models.ReviewSubmission, total int64, err error) {
	ctx, span := startSpan(ctx, "submission.ListForAdmin", attribute.String("status", status))
	defer endSpan(span, &err)

	if status != "" && !models.SubmissionStatus(status).Valid() {
		return nil, 0, apperr.Validation("unknown submission status")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.ReviewSubmission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Store("count submissions", err)
	}

	var subs []models.ReviewSubmission
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&subs).Error; err != nil {
		return nil, 0, apperr.Store("list submissions", err)
	}
	return subs, total, nil
}

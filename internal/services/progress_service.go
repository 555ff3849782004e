package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var activityTypes = map[string]bool{
	models.ActivityViewPanel:       true,
	models.ActivityViewIndicator:   true,
	models.ActivityReviewIndicator: true,
	models.ActivitySubmitReview:    true,
	models.ActivityStartSubmission: true,
}

// IsActivityType reports whether t is a known activity event type.
func IsActivityType(t string) bool {
	return activityTypes[t]
}

type ResumePoint struct {
	PanelID       uuid.UUID  `json:"panel_id"`
	PanelName     string     `json:"panel_name"`
	IndicatorID   *uuid.UUID `json:"indicator_id,omitempty"`
	IndicatorName string     `json:"indicator_name,omitempty"`
}

type PanelProgress struct {
	PanelID            uuid.UUID               `json:"panel_id"`
	PanelName          string                  `json:"panel_name"`
	TotalIndicators    int                     `json:"total_indicators"`
	ReviewedIndicators int                     `json:"reviewed_indicators"`
	SubmissionID       *uuid.UUID              `json:"submission_id,omitempty"`
	Status             models.SubmissionStatus `json:"status,omitempty"`
}

type ProgressService struct {
	clock
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// RecordActivity appends an event to the champion's activity log. It never
// fails the caller: errors are logged and dropped.
func (s *ProgressService) RecordActivity(ctx context.Context, championID uuid.UUID, eventType string, panelID, indicatorID *uuid.UUID, metadata map[string]interface{}) {
	ctx, span := startSpan(ctx, "progress.RecordActivity",
		attribute.String("champion_id", championID.String()),
		attribute.String("type", eventType),
	)
	var err error
	defer endSpan(span, &err)

	if !IsActivityType(eventType) {
		err = apperr.Validation("unknown activity type")
		slog.WarnContext(ctx, "activity dropped", "champion_id", championID.String(), "type", eventType)
		return
	}

	db := s.db.WithContext(ctx)

	if panelID == nil && indicatorID != nil {
		var ind models.Indicator
		if err = db.Select("panel_id").First(&ind, "id = ?", *indicatorID).Error; err == nil {
			panelID = &ind.PanelID
		}
	}

	event := models.ActivityEvent{
		ChampionID:  championID,
		Type:        eventType,
		PanelID:     panelID,
		IndicatorID: indicatorID,
		Metadata:    datatypes.JSONMap(metadata),
		CreatedAt:   s.timeNow(),
	}
	if err = db.Create(&event).Error; err != nil {
		slog.ErrorContext(ctx, "failed to record activity",
			"champion_id", championID.String(),
			"action", eventType,
			"error", err.Error(),
		)
	}
}

// GetResumePoint finds the most recent panel or indicator view on a panel
// the champion has not finished. It returns nil when there is none.
func (s *ProgressService) GetResumePoint(ctx context.Context, championID uuid.UUID) (_ *ResumePoint, err error) {
	ctx, span := startSpan(ctx, "progress.GetResumePoint", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	finished := db.Model(&models.ReviewSubmission{}).
		Select("panel_id").
		Where("champion_id = ? AND status IN ?", championID, models.TerminalStatuses())

	var events []models.ActivityEvent
	if err := db.Model(&models.ActivityEvent{}).
		Select("activity_events.*").
		Joins("JOIN panels ON panels.id = activity_events.panel_id").
		Where("activity_events.champion_id = ? AND activity_events.type IN ?", championID,
			[]string{models.ActivityViewIndicator, models.ActivityViewPanel}).
		Where("activity_events.panel_id NOT IN (?)", finished).
		Order("activity_events.id DESC").
		Limit(1).
		Find(&events).Error; err != nil {
		return nil, apperr.Store("load activity", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	ev := events[0]

	var panel models.Panel
	if err := db.First(&panel, "id = ?", *ev.PanelID).Error; err != nil {
		return nil, apperr.Store("load panel", err)
	}

	point := &ResumePoint{PanelID: panel.ID, PanelName: panel.Name}
	if ev.Type == models.ActivityViewIndicator && ev.IndicatorID != nil {
		var ind models.Indicator
		err := db.First(&ind, "id = ?", *ev.IndicatorID).Error
		switch {
		case err == nil:
			point.IndicatorID = &ind.ID
			point.IndicatorName = ind.Name
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.Store("load indicator", err)
		}
	}
	return point, nil
}

// PanelProgress summarises, per panel, how far the champion's latest
// submission got.
func (s *ProgressService) PanelProgress(ctx context.Context, championID uuid.UUID) (_ []PanelProgress, err error) {
	ctx, span := startSpan(ctx, "progress.PanelProgress", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	var panels []models.Panel
	if err := db.Order("position ASC, name ASC").Find(&panels).Error; err != nil {
		return nil, apperr.Store("list panels", err)
	}

	type countRow struct {
		GroupID uuid.UUID
		Total   int
	}

	var indicatorCounts []countRow
	if err := db.Model(&models.Indicator{}).
		Select("panel_id AS group_id, COUNT(*) AS total").
		Group("panel_id").
		Scan(&indicatorCounts).Error; err != nil {
		return nil, apperr.Store("count indicators", err)
	}
	totals := make(map[uuid.UUID]int, len(indicatorCounts))
	for _, r := range indicatorCounts {
		totals[r.GroupID] = r.Total
	}

	var submissions []models.ReviewSubmission
	if err := db.Where("champion_id = ?", championID).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, apperr.Store("list submissions", err)
	}
	latest := make(map[uuid.UUID]models.ReviewSubmission)
	var latestIDs []uuid.UUID
	for _, sub := range submissions {
		if _, seen := latest[sub.PanelID]; seen {
			continue
		}
		latest[sub.PanelID] = sub
		latestIDs = append(latestIDs, sub.ID)
	}

	reviewed := make(map[uuid.UUID]int)
	if len(latestIDs) > 0 {
		var reviewCounts []countRow
		if err := db.Model(&models.IndicatorReview{}).
			Select("submission_id AS group_id, COUNT(*) AS total").
			Where("submission_id IN ?", latestIDs).
			Group("submission_id").
			Scan(&reviewCounts).Error; err != nil {
			return nil, apperr.Store("count indicator reviews", err)
		}
		for _, r := range reviewCounts {
			reviewed[r.GroupID] = r.Total
		}
	}

	out := make([]PanelProgress, len(panels))
	for i, p := range panels {
		out[i] = PanelProgress{
			PanelID:         p.ID,
			PanelName:       p.Name,
			TotalIndicators: totals[p.ID],
		}
		if sub, ok := latest[p.ID]; ok {
			id := sub.ID
			out[i].SubmissionID = &id
			out[i].Status = sub.Status
			out[i].ReviewedIndicators = reviewed[sub.ID]
		}
	}
	return out, nil
}

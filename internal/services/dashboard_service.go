package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentSubmissions = 5

type Dashboard struct {
	Score             *Score                    `json:"score"`
	Rank              *int                      `json:"rank"`
	ResumePoint       *ResumePoint              `json:"resume_point"`
	UnreadCount       int                       `json:"unread_count"`
	RecentSubmissions []models.ReviewSubmission `json:"recent_submissions"`
}

// DashboardService assembles the champion's home view from the other
// services.
type DashboardService struct {
	ledger        *LedgerService
	progress      *ProgressService
	notifications *NotificationService
	submissions   *SubmissionService
}

func NewDashboardService(ledger *LedgerService, progress *ProgressService, notifications *NotificationService, submissions *SubmissionService) *DashboardService {
	return &DashboardService{
		ledger:        ledger,
		progress:      progress,
		notifications: notifications,
		submissions:   submissions,
	}
}

func (s *DashboardService) Dashboard(ctx context.Context, championID uuid.UUID) (_ *Dashboard, err error) {
	ctx, span := startSpan(ctx, "dashboard.Get", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Score, err = s.ledger.ComputeScore(gctx, championID)
		return err
	})
	g.Go(func() (err error) {
		d.Rank, err = s.ledger.Rank(gctx, championID)
		return err
	})
	g.Go(func() (err error) {
		d.ResumePoint, err = s.progress.GetResumePoint(gctx, championID)
		return err
	})
	g.Go(func() (err error) {
		d.UnreadCount, err = s.notifications.UnreadCount(gctx, championID)
		return err
	})
	g.Go(func() error {
		subs, err := s.submissions.ListForChampion(gctx, championID)
		if err != nil {
			return err
		}
		if len(subs) > dashboardRecentSubmissions {
			subs = subs[:dashboardRecentSubmissions]
		}
		d.RecentSubmissions = subs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

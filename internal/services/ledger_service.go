package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var ErrChampionNotFound = apperr.NotFound("champion not found")

// CreditSource tags one slice of a champion's balance.
type CreditSource string

const (
	SourceReviewCredit           CreditSource = "review_credit"
	SourceVoteCredit             CreditSource = "vote_credit"
	SourceParticipationRemainder CreditSource = "participation_remainder"
)

type BreakdownEntry struct {
	Source CreditSource `json:"source"`
	Amount int          `json:"amount"`
}

// Breakdown is a display view derived from the ledger. Participation is
// whatever the balance holds beyond review and vote credits, so the three
// parts always sum to the balance. It may be negative.
type Breakdown struct {
	Reviews       int `json:"reviews"`
	Votes         int `json:"votes"`
	Participation int `json:"participation"`
}

func (b Breakdown) Total() int {
	return b.Reviews + b.Votes + b.Participation
}

func (b Breakdown) Entries() []BreakdownEntry {
	return []BreakdownEntry{
		{Source: SourceReviewCredit, Amount: b.Reviews},
		{Source: SourceVoteCredit, Amount: b.Votes},
		{Source: SourceParticipationRemainder, Amount: b.Participation},
	}
}

type Score struct {
	ChampionID uuid.UUID        `json:"champion_id"`
	Total      int              `json:"total"`
	Breakdown  Breakdown        `json:"breakdown"`
	Entries    []BreakdownEntry `json:"entries"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	ChampionID  uuid.UUID `json:"champion_id"`
	DisplayName string    `json:"display_name"`
	Credits     int       `json:"credits"`
}

type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) ComputeScore(ctx context.Context, championID uuid.UUID) (_ *Score, err error) {
	ctx, span := startSpan(ctx, "ledger.ComputeScore", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	var champion models.Champion
	if err := db.First(&champion, "id = ?", championID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChampionNotFound
		}
		return nil, apperr.Store("load champion", err)
	}

	var reviewCredits int64
	if err := db.Model(&models.CreditEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("champion_id = ? AND kind = ?", championID, models.CreditReview).
		Scan(&reviewCredits).Error; err != nil {
		return nil, apperr.Store("sum review credits", err)
	}

	var upvotes int64
	if err := db.Model(&models.Vote{}).
		Where("target_owner_id = ? AND value = ?", championID, models.VoteUp).
		Count(&upvotes).Error; err != nil {
		return nil, apperr.Store("count upvotes", err)
	}

	b := Breakdown{
		Reviews: int(reviewCredits),
		Votes:   VoteCredits * int(upvotes),
	}
	b.Participation = champion.Credits - b.Reviews - b.Votes
	if b.Participation < 0 {
		slog.WarnContext(ctx, "ledger drift: negative participation remainder",
			"champion_id", championID.String(),
			"balance", champion.Credits,
			"reviews", b.Reviews,
			"votes", b.Votes,
		)
	}

	return &Score{
		ChampionID: championID,
		Total:      champion.Credits,
		Breakdown:  b,
		Entries:    b.Entries(),
	}, nil
}

// Rank returns the 1-based leaderboard position, or nil when the champion
// has no row. Ties go to the earlier account.
func (s *LedgerService) Rank(ctx context.Context, championID uuid.UUID) (_ *int, err error) {
	ctx, span := startSpan(ctx, "ledger.Rank", attribute.String("champion_id", championID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	var champion models.Champion
	if err := db.First(&champion, "id = ?", championID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Store("load champion", err)
	}

	var ahead int64
	if err := db.Model(&models.Champion{}).
		Where("credits > ?", champion.Credits).
		Or("credits = ? AND created_at < ?", champion.Credits, champion.CreatedAt).
		Or("credits = ? AND created_at = ? AND id < ?", champion.Credits, champion.CreatedAt, champion.ID).
		Count(&ahead).Error; err != nil {
		return nil, apperr.Store("count ranked champions", err)
	}

	rank := int(ahead) + 1
	return &rank, nil
}

func (s *LedgerService) Leaderboard(ctx context.Context, limit int) (_ []LeaderboardEntry, err error) {
	ctx, span := startSpan(ctx, "ledger.Leaderboard", attribute.Int("limit", limit))
	defer endSpan(span, &err)

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var champions []models.Champion
	if err := s.db.WithContext(ctx).
		Order("credits DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&champions).Error; err != nil {
		return nil, apperr.Store("load leaderboard", err)
	}

	entries := make([]LeaderboardEntry, len(champions))
	for i, c := range champions {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			ChampionID:  c.ID,
			DisplayName: c.DisplayName,
			Credits:     c.Credits,
		}
	}
	return entries, nil
}

// applyCredit writes a ledger entry and moves the champion's balance by the
// same amount. It must run inside the caller's transaction.
func applyCredit(tx *gorm.DB, championID uuid.UUID, kind models.CreditKind, amount int, sourceType, sourceID string, at time.Time) error {
	entry := models.CreditEntry{
		ChampionID: championID,
		Kind:       kind,
		Amount:     amount,
		SourceType: sourceType,
		SourceID:   sourceID,
		CreatedAt:  at,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.WithMetadata(apperr.CodeConflict, "credits already awarded",
				map[string]string{"source_type": sourceType, "source_id": sourceID})
		}
		return apperr.Store("insert credit entry", err)
	}

	res := tx.Model(&models.Champion{}).
		Where("id = ?", championID).
		UpdateColumns(map[string]interface{}{
			"credits":    gorm.Expr("credits + ?", amount),
			"updated_at": at,
		})
	if res.Error != nil {
		return apperr.Store("update credits", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrChampionNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminPolicy decides whether a principal is provisioned as an admin.
type AdminPolicy func(email, id string) bool

type ChampionService struct {
	db      *gorm.DB
	isAdmin AdminPolicy
}

func NewChampionService(db *gorm.DB, isAdmin AdminPolicy) *ChampionService {
	if isAdmin == nil {
		isAdmin = func(string, string) bool { return false }
	}
	return &ChampionService{db: db, isAdmin: isAdmin}
}

// EnsureChampion provisions the champion row for a principal on first sight
// and returns the stored row. Admin status granted by policy is sticky.
func (s *ChampionService) EnsureChampion(ctx context.Context, p identity.Principal) (_ *models.Champion, err error) {
	ctx, span := startSpan(ctx, "champion.Ensure", attribute.String("champion_id", p.ID.String()))
	defer endSpan(span, &err)

	db := s.db.WithContext(ctx)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(p.Email, "@")
	}
	admin := s.isAdmin(p.Email, p.ID.String())

	row := models.Champion{
		ID:          p.ID,
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		DisplayName: name,
		IsAdmin:     admin,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, apperr.Store("provision champion", err)
	}

	var champion models.Champion
	if err := db.First(&champion, "id = ?", p.ID).Error; err != nil {
		return nil, apperr.Store("load champion", err)
	}
	if admin && !champion.IsAdmin {
		if err := db.Model(&champion).Update("is_admin", true).Error; err != nil {
			return nil, apperr.Store("promote champion", err)
		}
		champion.IsAdmin = true
	}
	return &champion, nil
}

func (s *ChampionService) GetChampion(ctx context.Context, id uuid.UUID) (_ *models.Champion, err error) {
	ctx, span := startSpan(ctx, "champion.GetChampion", attribute.String("champion_id", id.String()))
	defer endSpan(span, &err)

	var champion models.Champion
	if err := s.db.WithContext(ctx).First(&champion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChampionNotFound
		}
		return nil, apperr.Store("load champion", err)
	}
	return &champion, nil
}

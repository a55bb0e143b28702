// Package services provides external service integrations and technical concerns like caching
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/pricing"
	"github.com/marlonhq/marlon-api/repository"
)

// RateTableService loads a leaser's coefficient grid as a pricing table,
// backed by a Redis read-through cache keyed per leaser. The cache is
// invalidated whenever the back office mutates that leaser's tiers.
type RateTableService interface {
	TableFor(ctx context.Context, leaserID uint) (*pricing.Table, error)
	Invalidate(ctx context.Context, leaserID uint) error
}

// RateTableServiceImpl implements RateTableService
type RateTableServiceImpl struct {
	rc              *redis.Client
	coefficientRepo repository.LeaserCoefficientRepository
	keyPrefix       string
	ttl             time.Duration
}

// NewRateTableService creates a new rate table service. A nil Redis client
// disables caching and every call loads from the database.
func NewRateTableService(rc *redis.Client, coefficientRepo repository.LeaserCoefficientRepository, keyPrefix string, ttl time.Duration) RateTableService {
	return &RateTableServiceImpl{
		rc:              rc,
		coefficientRepo: coefficientRepo,
		keyPrefix:       keyPrefix,
		ttl:             ttl,
	}
}

func (s *RateTableServiceImpl) cacheKey(leaserID uint) string {
	return fmt.Sprintf("%s:rate_table:%d", s.keyPrefix, leaserID)
}

// TableFor returns the pricing table for a leaser, from cache when possible
func (s *RateTableServiceImpl) TableFor(ctx context.Context, leaserID uint) (*pricing.Table, error) {
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, s.cacheKey(leaserID)).Bytes(); err == nil && len(bs) > 0 {
			var tiers []pricing.Tier
			if err := json.Unmarshal(bs, &tiers); err == nil {
				return pricing.NewTable(tiers), nil
			}
		}
	}

	rows, err := s.coefficientRepo.ListByLeaser(ctx, leaserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load coefficients for leaser %d: %w", leaserID, err)
	}

	tiers := TiersFromModels(rows)

	if s.rc != nil {
		if bs, err := json.Marshal(tiers); err == nil {
			_ = s.rc.Set(ctx, s.cacheKey(leaserID), bs, s.ttl).Err()
		}
	}

	return pricing.NewTable(tiers), nil
}

// Invalidate drops the cached rate table for a leaser
func (s *RateTableServiceImpl) Invalidate(ctx context.Context, leaserID uint) error {
	if s.rc == nil {
		return nil
	}
	return s.rc.Del(ctx, s.cacheKey(leaserID)).Err()
}

// TiersFromModels maps coefficient rows (with preloaded durations) to engine
// tiers. Rows without a preloaded duration are skipped; they cannot be matched
// against a requested number of months.
func TiersFromModels(rows []*models.LeaserCoefficient) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(rows))
	for _, row := range rows {
		if row.Duration == nil {
			continue
		}
		tiers = append(tiers, pricing.Tier{
			LeaserID:       row.LeaserID,
			DurationMonths: row.Duration.Months,
			MinAmount:      row.MinAmount,
			MaxAmount:      row.MaxAmount,
			Coefficient:    row.Coefficient,
		})
	}
	return tiers
}

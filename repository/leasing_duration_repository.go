package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// LeasingDurationRepositoryImpl implements LeasingDurationRepository
type LeasingDurationRepositoryImpl struct {
	*BaseRepository[models.LeasingDuration, models.LeasingDurationFilter]
}

// NewLeasingDurationRepository creates a new repository for offered contract lengths
func NewLeasingDurationRepository(db *gorm.DB) LeasingDurationRepository {
	return &LeasingDurationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LeasingDuration, models.LeasingDurationFilter](db),
	}
}

// ByMonths retrieves a duration row by its month count
func (r *LeasingDurationRepositoryImpl) ByMonths(ctx context.Context, months int) (*models.LeasingDuration, error) {
	db := r.getDB(ctx)

	var duration models.LeasingDuration
	err := db.Where("months = ?", months).Last(&duration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &duration, nil
}

// ListActive returns the active durations ordered by month count, for pickers
func (r *LeasingDurationRepositoryImpl) ListActive(ctx context.Context) ([]*models.LeasingDuration, error) {
	active := true
	return r.ByFilter(ctx, models.LeasingDurationFilter{IsActive: &active}, "months ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *LeasingDurationRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeasingDurationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Months != nil {
		query = query.Where("months = ?", *filter.Months)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves durations based on filter criteria
func (r *LeasingDurationRepositoryImpl) ByFilter(ctx context.Context, filter models.LeasingDurationFilter, orderBy string, limit, offset int) ([]*models.LeasingDuration, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LeasingDuration{}), filter)

	if orderBy == "" {
		orderBy = "months ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var durations []*models.LeasingDuration
	if err := query.Find(&durations).Error; err != nil {
		return nil, err
	}
	return durations, nil
}

// Count returns the number of durations matching the filter
func (r *LeasingDurationRepositoryImpl) Count(ctx context.Context, filter models.LeasingDurationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LeasingDuration{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any duration matching the filter exists
func (r *LeasingDurationRepositoryImpl) Exists(ctx context.Context, filter models.LeasingDurationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

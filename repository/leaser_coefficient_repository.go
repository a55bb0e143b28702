package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// LeaserCoefficientRepositoryImpl implements LeaserCoefficientRepository
type LeaserCoefficientRepositoryImpl struct {
	*BaseRepository[models.LeaserCoefficient, models.LeaserCoefficientFilter]
}

// NewLeaserCoefficientRepository creates a new repository for rate tiers
func NewLeaserCoefficientRepository(db *gorm.DB) LeaserCoefficientRepository {
	return &LeaserCoefficientRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LeaserCoefficient, models.LeaserCoefficientFilter](db),
	}
}

// ListByLeaser returns a leaser's full rate grid ordered for display:
// duration first, then ascending min amount with the unbounded tail last.
func (r *LeaserCoefficientRepositoryImpl) ListByLeaser(ctx context.Context, leaserID uint) ([]*models.LeaserCoefficient, error) {
	db := r.getDB(ctx)

	var rows []*models.LeaserCoefficient
	err := db.Preload("Duration").
		Where("leaser_id = ?", leaserID).
		Order("duration_id ASC, max_amount IS NULL ASC, min_amount ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByLeaserAndDuration returns the tier set the resolver loads for one
// (leaser, duration) pair.
func (r *LeaserCoefficientRepositoryImpl) ListByLeaserAndDuration(ctx context.Context, leaserID, durationID uint) ([]*models.LeaserCoefficient, error) {
	db := r.getDB(ctx)

	var rows []*models.LeaserCoefficient
	err := db.Where("leaser_id = ? AND duration_id = ?", leaserID, durationID).
		Order("max_amount IS NULL ASC, min_amount ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LeaserCoefficientRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeaserCoefficientFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.LeaserID != nil {
		query = query.Where("leaser_id = ?", *filter.LeaserID)
	}
	if filter.DurationID != nil {
		query = query.Where("duration_id = ?", *filter.DurationID)
	}
	return query
}

// ByFilter retrieves coefficients based on filter criteria
func (r *LeaserCoefficientRepositoryImpl) ByFilter(ctx context.Context, filter models.LeaserCoefficientFilter, orderBy string, limit, offset int) ([]*models.LeaserCoefficient, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LeaserCoefficient{}), filter)

	if orderBy == "" {
		orderBy = "min_amount ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.LeaserCoefficient
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of coefficients matching the filter
func (r *LeaserCoefficientRepositoryImpl) Count(ctx context.Context, filter models.LeaserCoefficientFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LeaserCoefficient{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any coefficient matching the filter exists
func (r *LeaserCoefficientRepositoryImpl) Exists(ctx context.Context, filter models.LeaserCoefficientFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update rewrites the amount range and coefficient of a tier by ID
func (r *LeaserCoefficientRepositoryImpl) Update(ctx context.Context, coefficient *models.LeaserCoefficient) error {
	if coefficient == nil {
		return errors.New("coefficient payload is nil")
	}
	if coefficient.ID == 0 {
		return errors.New("coefficient ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	updates := map[string]any{
		"min_amount":  coefficient.MinAmount,
		"max_amount":  coefficient.MaxAmount,
		"coefficient": coefficient.Coefficient,
		"updated_at":  coefficient.UpdatedAt,
	}

	err = db.Model(&models.LeaserCoefficient{}).Where("id = ?", coefficient.ID).Updates(updates).Error
	return err
}

// Delete removes a tier by ID
func (r *LeaserCoefficientRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("coefficient ID is required for delete")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.LeaserCoefficient{}, id).Error
	return err
}

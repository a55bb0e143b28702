package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// LeaserRepositoryImpl implements LeaserRepository
type LeaserRepositoryImpl struct {
	*BaseRepository[models.Leaser, models.LeaserFilter]
}

// NewLeaserRepository creates a new repository for financing partners
func NewLeaserRepository(db *gorm.DB) LeaserRepository {
	return &LeaserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Leaser, models.LeaserFilter](db),
	}
}

// ByUUID retrieves a leaser by its UUID
func (r *LeaserRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Leaser, error) {
	db := r.getDB(ctx)

	var leaser models.Leaser
	err := db.Where("uuid = ?", uuid).Last(&leaser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leaser, nil
}

// ByName retrieves a leaser by its unique name
func (r *LeaserRepositoryImpl) ByName(ctx context.Context, name string) (*models.Leaser, error) {
	filter := models.LeaserFilter{Name: &name}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LeaserRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeaserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves leasers based on filter criteria
func (r *LeaserRepositoryImpl) ByFilter(ctx context.Context, filter models.LeaserFilter, orderBy string, limit, offset int) ([]*models.Leaser, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Leaser{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var leasers []*models.Leaser
	if err := query.Find(&leasers).Error; err != nil {
		return nil, err
	}
	return leasers, nil
}

// Count returns the number of leasers matching the filter
func (r *LeaserRepositoryImpl) Count(ctx context.Context, filter models.LeaserFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Leaser{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any leaser matching the filter exists
func (r *LeaserRepositoryImpl) Exists(ctx context.Context, filter models.LeaserFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates mutable fields for a leaser by ID
func (r *LeaserRepositoryImpl) Update(ctx context.Context, leaser *models.Leaser) error {
	if leaser == nil {
		return errors.New("leaser payload is nil")
	}
	if leaser.ID == 0 {
		return errors.New("leaser ID is required for update")
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
		"name":          leaser.Name,
		"contact_email": leaser.ContactEmail,
		"notes":         leaser.Notes,
		"is_active":     leaser.IsActive,
		"updated_at":    leaser.UpdatedAt,
	}

	err = db.Model(&models.Leaser{}).Where("id = ?", leaser.ID).Updates(updates).Error
	return err
}

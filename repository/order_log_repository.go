package repository

import (
	"context"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// OrderLogRepositoryImpl implements OrderLogRepository
type OrderLogRepositoryImpl struct {
	*BaseRepository[models.OrderLog, models.OrderLogFilter]
}

// NewOrderLogRepository creates a new repository for the order audit trail
func NewOrderLogRepository(db *gorm.DB) OrderLogRepository {
	return &OrderLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OrderLog, models.OrderLogFilter](db),
	}
}

// ListByOrder returns an order's audit trail, newest first
func (r *OrderLogRepositoryImpl) ListByOrder(ctx context.Context, orderID uint, limit, offset int) ([]*models.OrderLog, error) {
	return r.ByFilter(ctx, models.OrderLogFilter{OrderID: &orderID}, "created_at DESC", limit, offset)
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderLogFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	return query
}

// ByFilter retrieves order logs based on filter criteria
func (r *OrderLogRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderLogFilter, orderBy string, limit, offset int) ([]*models.OrderLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderLog{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var logs []*models.OrderLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Count returns the number of order logs matching the filter
func (r *OrderLogRepositoryImpl) Count(ctx context.Context, filter models.OrderLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderLog{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any order log matching the filter exists
func (r *OrderLogRepositoryImpl) Exists(ctx context.Context, filter models.OrderLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

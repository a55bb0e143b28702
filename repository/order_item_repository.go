package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// OrderItemRepositoryImpl implements OrderItemRepository
type OrderItemRepositoryImpl struct {
	*BaseRepository[models.OrderItem, models.OrderItemFilter]
}

// NewOrderItemRepository creates a new repository for priced order lines
func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OrderItem, models.OrderItemFilter](db),
	}
}

// ListByOrder returns an order's lines in insertion order
func (r *OrderItemRepositoryImpl) ListByOrder(ctx context.Context, orderID uint) ([]*models.OrderItem, error) {
	return r.ByFilter(ctx, models.OrderItemFilter{OrderID: &orderID}, "id ASC", 0, 0)
}

// ReplaceForOrder atomically swaps an order's full line set for the freshly
// recalculated one. Recalculation is all-or-nothing, so lines are never
// updated piecemeal; the whole set is rewritten inside the caller's
// transaction.
func (r *OrderItemRepositoryImpl) ReplaceForOrder(ctx context.Context, orderID uint, items []*models.OrderItem) error {
	if orderID == 0 {
		return errors.New("order ID is required to replace items")
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

	err = db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
	if err != nil {
		return err
	}

	if len(items) > 0 {
		err = db.CreateInBatches(items, 100).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderItemRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderItemFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	return query
}

// ByFilter retrieves order items based on filter criteria
func (r *OrderItemRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderItemFilter, orderBy string, limit, offset int) ([]*models.OrderItem, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderItem{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []*models.OrderItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of order items matching the filter
func (r *OrderItemRepositoryImpl) Count(ctx context.Context, filter models.OrderItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderItem{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any order item matching the filter exists
func (r *OrderItemRepositoryImpl) Exists(ctx context.Context, filter models.OrderItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

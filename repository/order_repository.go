package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// OrderRepositoryImpl implements OrderRepository
type OrderRepositoryImpl struct {
	*BaseRepository[models.Order, models.OrderFilter]
}

// NewOrderRepository creates a new repository for leasing orders
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Order, models.OrderFilter](db),
	}
}

// ByUUID retrieves an order by its UUID
func (r *OrderRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Order, error) {
	db := r.getDB(ctx)

	var order models.Order
	err := db.Where("uuid = ?", uuid).Last(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ByUUIDWithItems retrieves an order with its priced lines, leaser, and
// duration preloaded. Items come back in insertion order so recalculated
// lines keep their position.
func (r *OrderRepositoryImpl) ByUUIDWithItems(ctx context.Context, uuid string) (*models.Order, error) {
	db := r.getDB(ctx)

	var order models.Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Items.Product").Preload("Leaser").Preload("Duration").
		Where("uuid = ?", uuid).Last(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.LeaserID != nil {
		query = query.Where("leaser_id = ?", *filter.LeaserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves orders based on filter criteria
func (r *OrderRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderFilter, orderBy string, limit, offset int) ([]*models.Order, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Order{}), filter)

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

	var orders []*models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *OrderRepositoryImpl) Count(ctx context.Context, filter models.OrderFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Order{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any order matching the filter exists
func (r *OrderRepositoryImpl) Exists(ctx context.Context, filter models.OrderFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update rewrites an order's mutable fields (status, totals, overrides) by ID
func (r *OrderRepositoryImpl) Update(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order payload is nil")
	}
	if order.ID == 0 {
		return errors.New("order ID is required for update")
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
		"status":                     order.Status,
		"total_selling_price":        order.TotalSellingPrice,
		"total_monthly_price":        order.TotalMonthlyPrice,
		"coefficient":                order.Coefficient,
		"override_purchase_price_ht": order.OverridePurchasePriceHT,
		"override_ca_marlon_ht":      order.OverrideCAMarlonHT,
		"override_monthly_ttc":       order.OverrideMonthlyTTC,
		"updated_at":                 order.UpdatedAt,
	}

	err = db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	return err
}

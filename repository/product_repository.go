package repository

import (
	"context"
	"errors"

	"github.com/marlonhq/marlon-api/models"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements ProductRepository
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new repository for catalog products
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db),
	}
}

// ByUUID retrieves a product by its UUID, with its default leaser preloaded
func (r *ProductRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Product, error) {
	db := r.getDB(ctx)

	var product models.Product
	err := db.Preload("DefaultLeaser").Where("uuid = ?", uuid).Last(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// BySKU retrieves a product by its SKU
func (r *ProductRepositoryImpl) BySKU(ctx context.Context, sku string) (*models.Product, error) {
	filter := models.ProductFilter{SKU: &sku}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListActive returns active catalog products for the storefront
func (r *ProductRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	active := true
	return r.ByFilter(ctx, models.ProductFilter{IsActive: &active}, "name ASC", limit, offset)
}

// applyFilter applies filter criteria to a GORM query
func (r *ProductRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.SKU != nil {
		query = query.Where("sku = ?", *filter.SKU)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.DefaultLeaserID != nil {
		query = query.Where("default_leaser_id = ?", *filter.DefaultLeaserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves products based on filter criteria
func (r *ProductRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductFilter, orderBy string, limit, offset int) ([]*models.Product, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)

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

	var products []*models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the number of products matching the filter
func (r *ProductRepositoryImpl) Count(ctx context.Context, filter models.ProductFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any product matching the filter exists
func (r *ProductRepositoryImpl) Exists(ctx context.Context, filter models.ProductFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates mutable fields for a product by ID
func (r *ProductRepositoryImpl) Update(ctx context.Context, product *models.Product) error {
	if product == nil {
		return errors.New("product payload is nil")
	}
	if product.ID == 0 {
		return errors.New("product ID is required for update")
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
		"name":              product.Name,
		"category":          product.Category,
		"description":       product.Description,
		"purchase_price":    product.PurchasePrice,
		"margin_percent":    product.MarginPercent,
		"default_leaser_id": product.DefaultLeaserID,
		"is_active":         product.IsActive,
		"updated_at":        product.UpdatedAt,
	}

	err = db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error
	return err
}

// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/marlonhq/marlon-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// LeaserRepository defines operations for financing partners
type LeaserRepository interface {
	Repository[models.Leaser, models.LeaserFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Leaser, error)
	ByName(ctx context.Context, name string) (*models.Leaser, error)
	Update(ctx context.Context, leaser *models.Leaser) error
}

// LeasingDurationRepository defines operations for offered contract lengths
type LeasingDurationRepository interface {
	Repository[models.LeasingDuration, models.LeasingDurationFilter]
	ByMonths(ctx context.Context, months int) (*models.LeasingDuration, error)
	ListActive(ctx context.Context) ([]*models.LeasingDuration, error)
}

// LeaserCoefficientRepository defines operations for rate tiers
type LeaserCoefficientRepository interface {
	Repository[models.LeaserCoefficient, models.LeaserCoefficientFilter]
	ListByLeaser(ctx context.Context, leaserID uint) ([]*models.LeaserCoefficient, error)
	ListByLeaserAndDuration(ctx context.Context, leaserID, durationID uint) ([]*models.LeaserCoefficient, error)
	Update(ctx context.Context, coefficient *models.LeaserCoefficient) error
	Delete(ctx context.Context, id uint) error
}

// ProductRepository defines operations for catalog products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Product, error)
	BySKU(ctx context.Context, sku string) (*models.Product, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
}

// OrderRepository defines operations for leasing orders
type OrderRepository interface {
	Repository[models.Order, models.OrderFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Order, error)
	ByUUIDWithItems(ctx context.Context, uuid string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

// OrderItemRepository defines operations for priced order lines
type OrderItemRepository interface {
	Repository[models.OrderItem, models.OrderItemFilter]
	ListByOrder(ctx context.Context, orderID uint) ([]*models.OrderItem, error)
	ReplaceForOrder(ctx context.Context, orderID uint, items []*models.OrderItem) error
}

// OrderLogRepository defines operations for the order audit trail
type OrderLogRepository interface {
	Repository[models.OrderLog, models.OrderLogFilter]
	ListByOrder(ctx context.Context, orderID uint, limit, offset int) ([]*models.OrderLog, error)
}

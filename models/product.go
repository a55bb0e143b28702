package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents one piece of leasable equipment in the catalog. The
// purchase price and margin are the pricing engine's inputs; the default
// leaser is the financing partner used for storefront price display.
// Table: products
type Product struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_products_uuid" json:"uuid"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	SKU         string  `gorm:"size:64;not null;uniqueIndex:uk_products_sku" json:"sku"`
	Category    *string `gorm:"size:128;index:idx_products_category" json:"category,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	PurchasePrice float64 `gorm:"type:numeric(12,2);not null" json:"purchase_price"`
	MarginPercent float64 `gorm:"type:numeric(8,4);not null" json:"margin_percent"`

	// DefaultLeaserID is nullable: a product without a financing partner is
	// listable but not priceable.
	DefaultLeaserID *uint `gorm:"index:idx_products_default_leaser_id" json:"default_leaser_id,omitempty"`

	IsActive  *bool     `gorm:"default:true;index:idx_products_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	DefaultLeaser *Leaser `gorm:"foreignKey:DefaultLeaserID" json:"default_leaser,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID              *uint      `json:"id,omitempty"`
	UUID            *uuid.UUID `json:"uuid,omitempty"`
	SKU             *string    `json:"sku,omitempty"`
	Category        *string    `json:"category,omitempty"`
	DefaultLeaserID *uint      `json:"default_leaser_id,omitempty"`
	IsActive        *bool      `json:"is_active,omitempty"`
}

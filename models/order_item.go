package models

import "time"

// OrderItem is one priced order line. Pricing inputs (purchase price, margin)
// are snapshotted from the product at the time the line was added, so later
// catalog edits do not silently change an order. The priced fields are
// rewritten in full on every recalculation; Coefficient is identical on all
// lines of one order.
// Table: order_items
type OrderItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"not null;index:idx_order_items_order_id" json:"order_id"`
	ProductID uint `gorm:"not null;index:idx_order_items_product_id" json:"product_id"`

	PurchasePrice float64 `gorm:"type:numeric(12,2);not null" json:"purchase_price"`
	MarginPercent float64 `gorm:"type:numeric(8,4);not null" json:"margin_percent"`
	Quantity      int     `gorm:"not null" json:"quantity"`

	SellingPrice float64 `gorm:"type:numeric(12,2);not null" json:"selling_price"`
	Coefficient  float64 `gorm:"type:numeric(10,4);not null" json:"coefficient"`
	MonthlyPrice float64 `gorm:"type:numeric(12,2);not null" json:"monthly_price"`

	// CalculatedPrice is the line total across full quantity and duration;
	// UnitPrice is its per-unit share, both rounded once at persistence from
	// the unrounded engine output.
	CalculatedPrice float64 `gorm:"type:numeric(14,2);not null" json:"calculated_price"`
	UnitPrice       float64 `gorm:"type:numeric(12,2);not null" json:"unit_price"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemFilter represents filter criteria for order item queries
type OrderItemFilter struct {
	ID        *uint `json:"id,omitempty"`
	OrderID   *uint `json:"order_id,omitempty"`
	ProductID *uint `json:"product_id,omitempty"`
}

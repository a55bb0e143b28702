package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of a leasing order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusRejected  OrderStatus = "rejected"
)

// String returns the string representation of the status
func (s OrderStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSubmitted, OrderStatusApproved, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for OrderStatus
func (s *OrderStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for OrderStatus
func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid OrderStatus: %s", s)
	}
	return string(s), nil
}

// Order represents one leasing order. Engine-computed totals are stored next
// to the chosen leaser and duration; the Override* fields are back-office
// display overrides stored alongside the computed figures, never produced by
// the pricing engine, and never fed back into it.
// Table: orders
type Order struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_orders_uuid" json:"uuid"`

	CompanyName  string  `gorm:"size:255;not null" json:"company_name"`
	ContactName  *string `gorm:"size:255" json:"contact_name,omitempty"`
	ContactEmail *string `gorm:"size:255" json:"contact_email,omitempty"`

	LeaserID   uint `gorm:"not null;index:idx_orders_leaser_id" json:"leaser_id"`
	DurationID uint `gorm:"not null;index:idx_orders_duration_id" json:"duration_id"`

	Status OrderStatus `gorm:"size:32;not null;default:'draft';index:idx_orders_status" json:"status"`

	// Engine output at the last full recalculation. Coefficient is the one
	// shared coefficient applied to every line.
	TotalSellingPrice float64 `gorm:"type:numeric(14,2);not null;default:0" json:"total_selling_price"`
	TotalMonthlyPrice float64 `gorm:"type:numeric(14,2);not null;default:0" json:"total_monthly_price"`
	Coefficient       float64 `gorm:"type:numeric(10,4);not null;default:0" json:"coefficient"`

	// Back-office display overrides (HT = excluding tax, TTC = including tax).
	OverridePurchasePriceHT *float64 `gorm:"type:numeric(14,2)" json:"override_purchase_price_ht,omitempty"`
	OverrideCAMarlonHT      *float64 `gorm:"type:numeric(14,2)" json:"override_ca_marlon_ht,omitempty"`
	OverrideMonthlyTTC      *float64 `gorm:"type:numeric(14,2)" json:"override_monthly_ttc,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_orders_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Leaser   *Leaser          `gorm:"foreignKey:LeaserID" json:"leaser,omitempty"`
	Duration *LeasingDuration `gorm:"foreignKey:DurationID" json:"duration,omitempty"`
	Items    []OrderItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderFilter represents filter criteria for order queries
type OrderFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	LeaserID      *uint        `json:"leaser_id,omitempty"`
	Status        *OrderStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}

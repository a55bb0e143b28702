package models

import (
	"encoding/json"
	"time"
)

// OrderLog records back-office and checkout activity on an order for the
// operations audit trail.
// Table: order_logs
type OrderLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index:idx_order_logs_order_id" json:"order_id"`
	Action      string          `gorm:"size:64;not null;index:idx_order_logs_action" json:"action"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Metadata    json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	RequestID   *string         `gorm:"size:255" json:"request_id,omitempty"`
	CreatedAt   time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_order_logs_created_at" json:"created_at"`
}

func (OrderLog) TableName() string {
	return "order_logs"
}

// Order log action constants
const (
	OrderLogActionCreated       = "created"
	OrderLogActionItemAdded     = "item_added"
	OrderLogActionItemRemoved   = "item_removed"
	OrderLogActionRecalculated  = "recalculated"
	OrderLogActionOverridesSet  = "overrides_set"
	OrderLogActionStatusChanged = "status_changed"
)

// OrderLogFilter represents filter criteria for order log queries
type OrderLogFilter struct {
	ID      *uint   `json:"id,omitempty"`
	OrderID *uint   `json:"order_id,omitempty"`
	Action  *string `json:"action,omitempty"`
}

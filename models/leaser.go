// Package models contains domain entities and business models for the leasing marketplace
package models

import (
	"time"

	"github.com/google/uuid"
)

// Leaser represents a third-party financing company. Each leaser owns a rate
// table (LeaserCoefficient rows) and ultimately finances equipment purchases.
// Table: leasers
type Leaser struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_leasers_uuid" json:"uuid"`

	Name         string  `gorm:"size:255;not null;uniqueIndex:uk_leasers_name" json:"name"`
	ContactEmail *string `gorm:"size:255" json:"contact_email,omitempty"`
	Notes        *string `gorm:"type:text" json:"notes,omitempty"`

	IsActive  *bool     `gorm:"default:true;index:idx_leasers_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Leaser) TableName() string {
	return "leasers"
}

// LeaserFilter represents filter criteria for leaser queries
type LeaserFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Name     *string    `json:"name,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

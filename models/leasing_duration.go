package models

import "time"

// LeasingDuration represents one offered contract length. Durations are an
// enumerated set managed by administrators (typically 24/36/48/60 months);
// coefficients are scoped to one duration row.
// Table: leasing_durations
type LeasingDuration struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	Months int  `gorm:"not null;uniqueIndex:uk_leasing_durations_months" json:"months"`

	IsActive  *bool     `gorm:"default:true;index:idx_leasing_durations_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (LeasingDuration) TableName() string {
	return "leasing_durations"
}

// LeasingDurationFilter represents filter criteria for duration queries
type LeasingDurationFilter struct {
	ID       *uint `json:"id,omitempty"`
	Months   *int  `json:"months,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}

package models

import "time"

// LeaserCoefficient is one tranche of a leaser's rate table: an inclusive
// amount range mapped to a coefficient (percentage, e.g. 3.8 meaning 3.8%),
// scoped to one leaser and one leasing duration.
//
// A NULL MaxAmount marks the tranche as unbounded above. Per (leaser,
// duration) at most one unbounded row may exist and it must carry the
// highest MinAmount; the admin flow enforces this on writes.
// Table: leaser_coefficients
type LeaserCoefficient struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LeaserID   uint `gorm:"not null;index:idx_leaser_coefficients_leaser_id" json:"leaser_id"`
	DurationID uint `gorm:"not null;index:idx_leaser_coefficients_duration_id" json:"duration_id"`

	MinAmount   float64  `gorm:"type:numeric(12,2);not null" json:"min_amount"`
	MaxAmount   *float64 `gorm:"type:numeric(12,2)" json:"max_amount,omitempty"`
	Coefficient float64  `gorm:"type:numeric(10,4);not null" json:"coefficient"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Leaser   *Leaser          `gorm:"foreignKey:LeaserID" json:"leaser,omitempty"`
	Duration *LeasingDuration `gorm:"foreignKey:DurationID" json:"duration,omitempty"`
}

func (LeaserCoefficient) TableName() string {
	return "leaser_coefficients"
}

// LeaserCoefficientFilter represents filter criteria for coefficient queries
type LeaserCoefficientFilter struct {
	ID         *uint `json:"id,omitempty"`
	LeaserID   *uint `json:"leaser_id,omitempty"`
	DurationID *uint `json:"duration_id,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// AttributionModel mirrors the 'attributions' table.
// The partial unique index keeps at most one active attribution per booking.
type AttributionModel struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primary_key"`
	BookingID              uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_attributions_active_booking,where:status IN ('PENDING','BROADCASTING')"`
	Status                 string     `gorm:"type:varchar(20);not null;index"`
	ServiceType            string     `gorm:"type:varchar(100);not null"`
	Latitude               float64    `gorm:"type:decimal(10,8);not null"`
	Longitude              float64    `gorm:"type:decimal(11,8);not null"`
	MaxRadiusKm            float64    `gorm:"not null"`
	AcceptedProfessionalID *uuid.UUID `gorm:"type:uuid"`
	BroadcastDeadline      *time.Time `gorm:"index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName explicitly sets the table name for GORM.
func (AttributionModel) TableName() string {
	return "attributions"
}

// EligibilityModel mirrors the 'eligibilities' table, one row per (attribution, professional).
type EligibilityModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	AttributionID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_eligibility_pair,priority:1"`
	ProfessionalID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_eligibility_pair,priority:2;index"`
	IsEligible     bool       `gorm:"not null;default:true"`
	DistanceKm     float64    `gorm:"type:decimal(8,3);not null"`
	Notified       bool       `gorm:"not null;default:false"`
	NotifiedAt     *time.Time
	Responded      bool `gorm:"not null;default:false"`
	RespondedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (EligibilityModel) TableName() string {
	return "eligibilities"
}

// ProfessionalResponseModel mirrors the 'professional_responses' table.
// A later decision of the same professional replaces the earlier one.
type ProfessionalResponseModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	AttributionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_response_pair,priority:1"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_response_pair,priority:2"`
	Decision       string    `gorm:"type:varchar(10);not null"`
	RespondedAt    time.Time `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfessionalResponseModel) TableName() string {
	return "professional_responses"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BookingModel mirrors the 'bookings' table owned by the checkout flow. Read-only here.
type BookingModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	Reference         string    `gorm:"type:varchar(50);not null"`
	Status            string    `gorm:"type:varchar(30);not null"`
	ServiceType       string    `gorm:"type:varchar(100);not null"`
	ScheduledAt       time.Time `gorm:"not null"`
	Address           string    `gorm:"type:text"`
	PostalCode        string    `gorm:"type:varchar(20)"`
	City              string    `gorm:"type:varchar(100)"`
	Latitude          *float64  `gorm:"type:decimal(10,8)"`
	Longitude         *float64  `gorm:"type:decimal(11,8)"`
	TotalAmount       int64     `gorm:"not null"`
	Currency          string    `gorm:"type:varchar(3);not null"`
	CustomerID        uuid.UUID `gorm:"type:uuid"`
	CustomerFirstName string    `gorm:"type:varchar(100)"`
	CustomerLastName  string    `gorm:"type:varchar(100)"`
	CustomerEmail     string    `gorm:"type:varchar(320)"`
	CustomerPhone     string    `gorm:"type:varchar(32)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// ProfessionalModel mirrors the 'professionals' registry table. Read-only here.
type ProfessionalModel struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primary_key"`
	CompanyName  string                      `gorm:"type:varchar(200);not null"`
	ContactName  string                      `gorm:"type:varchar(200)"`
	Email        string                      `gorm:"type:varchar(320);not null"`
	Phone        string                      `gorm:"type:varchar(32)"`
	Verified     bool                        `gorm:"not null;default:false"`
	Available    bool                        `gorm:"not null;default:false"`
	ServiceTypes datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Latitude     *float64                    `gorm:"type:decimal(10,8)"`
	Longitude    *float64                    `gorm:"type:decimal(11,8)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfessionalModel) TableName() string {
	return "professionals"
}

// StaffMemberModel mirrors the 'staff_members' directory table. Read-only here.
type StaffMemberModel struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primary_key"`
	Name       string                      `gorm:"type:varchar(200);not null"`
	Email      string                      `gorm:"type:varchar(320);not null"`
	Department string                      `gorm:"type:varchar(100)"`
	Active     bool                        `gorm:"not null;default:true"`
	Triggers   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (StaffMemberModel) TableName() string {
	return "staff_members"
}

// AllModels lists the tables written by this service, in migration order.
func AllModels() []any {
	return []any{
		&AttributionModel{},
		&EligibilityModel{},
		&ProfessionalResponseModel{},
		&NotificationModel{},
		&ScheduledReminderModel{},
	}
}

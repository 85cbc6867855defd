package model

import (
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationModel mirrors the 'notifications' table.
// dedup_key is unique: it is the only guard against duplicate sends across processes.
type NotificationModel struct {
	ID             uuid.UUID                                       `gorm:"type:uuid;primary_key"`
	DedupKey       string                                          `gorm:"type:varchar(512);not null;uniqueIndex:uq_notifications_dedup_key"`
	Channel        string                                          `gorm:"type:varchar(20);not null"`
	RecipientClass string                                          `gorm:"type:varchar(20);not null"`
	Recipient      string                                          `gorm:"type:varchar(320);not null"`
	TemplateID     string                                          `gorm:"type:varchar(100);not null"`
	Status         string                                          `gorm:"type:varchar(20);not null;index"`
	Payload        datatypes.JSONMap                               `gorm:"type:jsonb"`
	Metadata       datatypes.JSONType[entity.NotificationMetadata] `gorm:"type:jsonb"`

	// Copied out of metadata so that lookups by booking or attribution use an index.
	BookingID     *uuid.UUID `gorm:"type:uuid;index"`
	AttributionID *uuid.UUID `gorm:"type:uuid;index"`
	ProviderRef   string     `gorm:"type:varchar(255)"`
	LastError     string     `gorm:"type:text"`
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}

// ScheduledReminderModel mirrors the 'scheduled_reminders' table.
// RecipientKey is "customer" or the professional ID, so both variants share one unique index.
type ScheduledReminderModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	BookingID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_reminders_booking_type_recipient,priority:1"`
	ReminderType   string     `gorm:"type:varchar(10);not null;uniqueIndex:uq_reminders_booking_type_recipient,priority:2"`
	RecipientKey   string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_reminders_booking_type_recipient,priority:3"`
	AttributionID  *uuid.UUID `gorm:"type:uuid"`
	ProfessionalID *uuid.UUID `gorm:"type:uuid"`
	ScheduledAt    time.Time  `gorm:"not null;index"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ScheduledReminderModel) TableName() string {
	return "scheduled_reminders"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType names a reminder offset, e.g. 7D, 24H, 1H.
type ReminderType string

// ReminderStatus is the state of a scheduled reminder.
type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "PENDING"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

// ScheduledReminder is a future-dated reminder consumed by an external dispatcher.
// Customer reminders have no professional; professional reminders always carry the attribution.
type ScheduledReminder struct {
	ID             uuid.UUID      `json:"id"`
	BookingID      uuid.UUID      `json:"booking_id"`
	AttributionID  *uuid.UUID     `json:"attribution_id,omitempty"`
	ProfessionalID *uuid.UUID     `json:"professional_id,omitempty"`
	Type           ReminderType   `json:"type"`
	ScheduledAt    time.Time      `json:"scheduled_at"`
	Status         ReminderStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsCustomerReminder reports whether the reminder targets the customer.
func (r *ScheduledReminder) IsCustomerReminder() bool {
	return r.ProfessionalID == nil
}

// RecipientKey is the uniqueness component distinguishing customer and professional reminders.
func (r *ScheduledReminder) RecipientKey() string {
	if r.ProfessionalID == nil {
		return "customer"
	}

	return r.ProfessionalID.String()
}

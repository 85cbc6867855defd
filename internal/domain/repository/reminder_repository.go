package repository

import (
	"context"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// ReminderRepository defines the persistence operations for scheduled reminders.
type ReminderRepository interface {
	// CreateIfAbsent inserts the reminder unless one exists for
	// (booking, type, recipient). On conflict the stored row is returned with created=false.
	CreateIfAbsent(ctx context.Context, reminder *entity.ScheduledReminder) (stored *entity.ScheduledReminder, created bool, err error)

	// FindByBooking lists the reminders of a booking ordered by scheduled date.
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.ScheduledReminder, error)

	// CancelPendingByBooking flips every PENDING reminder of the booking to CANCELLED.
	CancelPendingByBooking(ctx context.Context, bookingID uuid.UUID, at time.Time) (int64, error)
}

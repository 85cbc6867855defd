package usecase

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// ReminderScheduler persists future-dated reminders. It never fires them.
type ReminderScheduler interface {
	// ScheduleCustomerReminders creates the customer reminders whose time is still ahead.
	ScheduleCustomerReminders(ctx context.Context, booking *entity.Booking) ([]*entity.ScheduledReminder, error)

	// ScheduleProfessionalReminders creates the reminders of the accepted professional.
	ScheduleProfessionalReminders(ctx context.Context, booking *entity.Booking, attribution *entity.Attribution) ([]*entity.ScheduledReminder, error)

	// CancelBookingReminders cancels every pending reminder of the booking.
	CancelBookingReminders(ctx context.Context, bookingID uuid.UUID) (int64, error)

	// Reminders lists the reminders of a booking.
	Reminders(ctx context.Context, bookingID uuid.UUID) ([]*entity.ScheduledReminder, error)
}

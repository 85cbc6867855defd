package memory

import (
	"context"
	"sort"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

type reminderRepository struct {
	s *Store
}

func (r *reminderRepository) CreateIfAbsent(_ context.Context, reminder *entity.ScheduledReminder) (*entity.ScheduledReminder, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := reminderKey{bookingID: reminder.BookingID, reminderType: reminder.Type, recipient: reminder.RecipientKey()}
	if existingID, ok := r.s.reminderKeys[key]; ok {
		return cloneReminder(r.s.reminders[existingID]), false, nil
	}

	stored := cloneReminder(reminder)
	r.s.reminders[stored.ID] = stored
	r.s.reminderKeys[key] = stored.ID

	return cloneReminder(stored), true, nil
}

func (r *reminderRepository) FindByBooking(_ context.Context, bookingID uuid.UUID) ([]*entity.ScheduledReminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reminders []*entity.ScheduledReminder
	for _, reminder := range r.s.reminders {
		if reminder.BookingID == bookingID {
			reminders = append(reminders, cloneReminder(reminder))
		}
	}

	sort.Slice(reminders, func(i, j int) bool {
		if !reminders[i].ScheduledAt.Equal(reminders[j].ScheduledAt) {
			return reminders[i].ScheduledAt.Before(reminders[j].ScheduledAt)
		}

		return reminders[i].RecipientKey() < reminders[j].RecipientKey()
	})

	return reminders, nil
}

func (r *reminderRepository) CancelPendingByBooking(_ context.Context, bookingID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var cancelled int64
	for _, reminder := range r.s.reminders {
		if reminder.BookingID == bookingID && reminder.Status == entity.ReminderStatusPending {
			reminder.Status = entity.ReminderStatusCancelled
			reminder.UpdatedAt = at
			cancelled++
		}
	}

	return cancelled, nil
}

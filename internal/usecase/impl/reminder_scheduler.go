package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PlannedReminder is a reminder offset resolved against a service date.
type PlannedReminder struct {
	Type        entity.ReminderType
	ScheduledAt time.Time
}

// PlanReminders resolves offsets against serviceAt and drops every time not after now.
// The result is ordered by scheduled time.
func PlanReminders(serviceAt time.Time, offsets []config.ReminderOffset, now time.Time) []PlannedReminder {
	planned := make([]PlannedReminder, 0, len(offsets))
	seen := make(map[entity.ReminderType]struct{}, len(offsets))
	for _, offset := range offsets {
		reminderType := entity.ReminderType(offset.Type)
		if reminderType == "" || offset.Before <= 0 {
			continue
		}
		if _, dup := seen[reminderType]; dup {
			continue
		}
		seen[reminderType] = struct{}{}

		at := serviceAt.Add(-offset.Before)
		if !at.After(now) {
			continue
		}
		planned = append(planned, PlannedReminder{Type: reminderType, ScheduledAt: at})
	}

	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].ScheduledAt.Before(planned[j].ScheduledAt)
	})

	return planned
}

type reminderScheduler struct {
	logger       *slog.Logger
	reminderRepo repository.ReminderRepository
	offsets      []config.ReminderOffset
	now          func() time.Time
}

// ReminderSchedulerParams holds dependencies for ReminderScheduler, injected by Fx.
type ReminderSchedulerParams struct {
	fx.In

	Logger       *slog.Logger
	ReminderRepo repository.ReminderRepository
	Config       *config.Config
}

// NewReminderScheduler creates a new reminder scheduler instance
func NewReminderScheduler(params ReminderSchedulerParams) usecase.ReminderScheduler {
	reminderCfg := params.Config.Reminder
	if reminderCfg == nil || len(reminderCfg.Offsets) == 0 {
		reminderCfg = config.DefaultReminderConfig()
	}

	return &reminderScheduler{
		logger:       params.Logger,
		reminderRepo: params.ReminderRepo,
		offsets:      reminderCfg.Offsets,
		now:          time.Now,
	}
}

// ScheduleCustomerReminders creates the customer reminders still ahead of now.
// It returns only the reminders created by this call.
func (s *reminderScheduler) ScheduleCustomerReminders(ctx context.Context, booking *entity.Booking) ([]*entity.ScheduledReminder, error) {
	if booking.IsCancelled() {
		return nil, nil
	}

	return s.schedule(ctx, booking, nil, nil)
}

// ScheduleProfessionalReminders creates the reminders of the professional holding the attribution.
func (s *reminderScheduler) ScheduleProfessionalReminders(ctx context.Context, booking *entity.Booking, attribution *entity.Attribution) ([]*entity.ScheduledReminder, error) {
	if attribution.Status != entity.AttributionStatusAccepted || attribution.AcceptedProfessionalID == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("professional reminders need an accepted attribution")
	}
	if booking.IsCancelled() {
		return nil, nil
	}

	attributionID := attribution.ID
	professionalID := *attribution.AcceptedProfessionalID

	return s.schedule(ctx, booking, &attributionID, &professionalID)
}

func (s *reminderScheduler) schedule(ctx context.Context, booking *entity.Booking, attributionID, professionalID *uuid.UUID) ([]*entity.ScheduledReminder, error) {
	now := s.now()
	planned := PlanReminders(booking.ScheduledAt, s.offsets, now)

	var created []*entity.ScheduledReminder
	for _, plan := range planned {
		reminder := &entity.ScheduledReminder{
			ID:             uuid.New(),
			BookingID:      booking.ID,
			AttributionID:  attributionID,
			ProfessionalID: professionalID,
			Type:           plan.Type,
			ScheduledAt:    plan.ScheduledAt,
			Status:         entity.ReminderStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		stored, isNew, err := s.reminderRepo.CreateIfAbsent(ctx, reminder)
		if err != nil {
			return created, errors.Wrapf(err, "failed to create %s reminder", plan.Type)
		}
		if isNew {
			created = append(created, stored)
		}
	}

	s.logger.Debug("Reminders scheduled",
		slog.String("booking_id", booking.ID.String()),
		slog.Bool("professional", professionalID != nil),
		slog.Int("planned", len(planned)),
		slog.Int("created", len(created)),
	)

	return created, nil
}

// CancelBookingReminders cancels every pending reminder of the booking.
func (s *reminderScheduler) CancelBookingReminders(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	cancelled, err := s.reminderRepo.CancelPendingByBooking(ctx, bookingID, s.now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to cancel reminders")
	}

	return cancelled, nil
}

// Reminders lists the reminders of a booking.
func (s *reminderScheduler) Reminders(ctx context.Context, bookingID uuid.UUID) ([]*entity.ScheduledReminder, error) {
	return s.reminderRepo.FindByBooking(ctx, bookingID)
}

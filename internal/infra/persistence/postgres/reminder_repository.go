package postgres

import (
	"context"
	"time"

	"attribution/internal/domain/entity"
	"attribution/internal/domain/repository"
	"attribution/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reminderRepository implements the repository.ReminderRepository interface.
type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository is the constructor for reminderRepository.
func NewReminderRepository(db *gorm.DB) repository.ReminderRepository {
	return &reminderRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the reminder unless (booking, type, recipient) is already scheduled.
func (repo *reminderRepository) CreateIfAbsent(ctx context.Context, reminder *entity.ScheduledReminder) (*entity.ScheduledReminder, bool, error) {
	reminderM := fromReminderDomain(reminder)

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}, {Name: "reminder_type"}, {Name: "recipient_key"}},
			DoNothing: true,
		}).
		Create(reminderM)
	if result.Error != nil {
		return nil, false, translateWriteError(result.Error, "failed to schedule reminder")
	}

	if result.RowsAffected > 0 {
		return toReminderDomain(reminderM), true, nil
	}

	var existing model.ScheduledReminderModel
	if err := repo.db.WithContext(ctx).
		Where("booking_id = ? AND reminder_type = ? AND recipient_key = ?",
			reminderM.BookingID, reminderM.ReminderType, reminderM.RecipientKey).
		First(&existing).Error; err != nil {
		return nil, false, errors.Wrap(err, "failed to find existing reminder")
	}

	return toReminderDomain(&existing), false, nil
}

// FindByBooking lists the reminders of a booking by scheduled date.
func (repo *reminderRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.ScheduledReminder, error) {
	var reminderModels []*model.ScheduledReminderModel

	if err := repo.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("scheduled_at ASC").
		Order("recipient_key ASC").
		Find(&reminderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find reminders by booking")
	}

	reminders := make([]*entity.ScheduledReminder, 0, len(reminderModels))
	for _, reminderM := range reminderModels {
		reminders = append(reminders, toReminderDomain(reminderM))
	}

	return reminders, nil
}

// CancelPendingByBooking cancels the reminders of a booking that have not fired yet.
func (repo *reminderRepository) CancelPendingByBooking(ctx context.Context, bookingID uuid.UUID, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ScheduledReminderModel{}).
		Where("booking_id = ? AND status = ?", bookingID, string(entity.ReminderStatusPending)).
		Updates(map[string]any{
			"status":     string(entity.ReminderStatusCancelled),
			"updated_at": at,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to cancel reminders")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toReminderDomain converts a GORM ScheduledReminderModel to a domain ScheduledReminder entity.
func toReminderDomain(data *model.ScheduledReminderModel) *entity.ScheduledReminder {
	if data == nil {
		return nil
	}

	return &entity.ScheduledReminder{
		ID:             data.ID,
		BookingID:      data.BookingID,
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		Type:           entity.ReminderType(data.ReminderType),
		ScheduledAt:    data.ScheduledAt,
		Status:         entity.ReminderStatus(data.Status),
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromReminderDomain converts a domain ScheduledReminder entity to a GORM ScheduledReminderModel.
func fromReminderDomain(data *entity.ScheduledReminder) *model.ScheduledReminderModel {
	if data == nil {
		return nil
	}

	return &model.ScheduledReminderModel{
		ID:             data.ID,
		BookingID:      data.BookingID,
		ReminderType:   string(data.Type),
		RecipientKey:   data.RecipientKey(),
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		ScheduledAt:    data.ScheduledAt,
		Status:         string(data.Status),
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

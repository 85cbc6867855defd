package postgres

import (
	"context"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notificationRepository implements the repository.NotificationRepository interface.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the notification unless its dedup key is already stored.
func (repo *notificationRepository) CreateIfAbsent(ctx context.Context, notification *entity.Notification) (*entity.Notification, bool, error) {
	notificationM := fromNotificationDomain(notification)

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedup_key"}}, DoNothing: true}).
		Create(notificationM)
	if result.Error != nil && !isUniqueConstraintViolation(result.Error) {
		return nil, false, translateWriteError(result.Error, "failed to create notification")
	}

	if result.Error == nil && result.RowsAffected > 0 {
		return toNotificationDomain(notificationM), true, nil
	}

	existing, err := repo.FindByDedupKey(ctx, notification.DedupKey)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

// FindByID retrieves a notification by its unique ID.
func (repo *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByDedupKey retrieves the notification stored under a dedup key.
func (repo *notificationRepository) FindByDedupKey(ctx context.Context, dedupKey string) (*entity.Notification, error) {
	return repo.findOne(ctx, "dedup_key = ?", dedupKey)
}

func (repo *notificationRepository) findOne(ctx context.Context, query string, arg any) (*entity.Notification, error) {
	var notificationM model.NotificationModel

	if err := repo.db.WithContext(ctx).
		Where(query, arg).
		First(&notificationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotificationNotFound
		}

		return nil, errors.Wrap(err, "failed to find notification")
	}

	return toNotificationDomain(&notificationM), nil
}

// UpdateStatus moves the notification from update.From to update.To.
func (repo *notificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update repository.NotificationStatusUpdate) (bool, error) {
	values := map[string]any{
		"status":       string(update.To),
		"provider_ref": update.ProviderRef,
		"last_error":   update.LastError,
		"updated_at":   update.At,
	}
	if update.To == entity.NotificationStatusSent {
		values["sent_at"] = update.At
	}

	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ? AND status = ?", id, string(update.From)).
		Updates(values)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update notification status")
	}

	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := repo.FindByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

// ClaimStalePending touches a PENDING row older than staleBefore. Only one caller wins.
func (repo *notificationRepository) ClaimStalePending(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ? AND status = ? AND updated_at < ?", id, string(entity.NotificationStatusPending), staleBefore).
		Update("updated_at", now)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to claim pending notification")
	}

	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := repo.FindByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

// FindByBooking lists the notifications of a booking in creation order.
func (repo *notificationRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Notification, error) {
	return repo.findMany(ctx, "booking_id = ?", bookingID)
}

// FindByAttribution lists the notifications of an attribution in creation order.
func (repo *notificationRepository) FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Notification, error) {
	return repo.findMany(ctx, "attribution_id = ?", attributionID)
}

func (repo *notificationRepository) findMany(ctx context.Context, query string, arg any) ([]*entity.Notification, error) {
	var notificationModels []*model.NotificationModel

	if err := repo.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at ASC").
		Order("dedup_key ASC").
		Find(&notificationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	notifications := make([]*entity.Notification, 0, len(notificationModels))
	for _, notificationM := range notificationModels {
		notifications = append(notifications, toNotificationDomain(notificationM))
	}

	return notifications, nil
}

// --- Mapper Functions ---

// toNotificationDomain converts a GORM NotificationModel to a domain Notification entity.
func toNotificationDomain(data *model.NotificationModel) *entity.Notification {
	if data == nil {
		return nil
	}

	return &entity.Notification{
		ID:             data.ID,
		DedupKey:       data.DedupKey,
		Channel:        entity.Channel(data.Channel),
		RecipientClass: entity.RecipientClass(data.RecipientClass),
		Recipient:      data.Recipient,
		TemplateID:     data.TemplateID,
		Status:         entity.NotificationStatus(data.Status),
		Payload:        map[string]any(data.Payload),
		Metadata:       data.Metadata.Data(),
		ProviderRef:    data.ProviderRef,
		LastError:      data.LastError,
		SentAt:         data.SentAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromNotificationDomain converts a domain Notification entity to a GORM NotificationModel.
func fromNotificationDomain(data *entity.Notification) *model.NotificationModel {
	if data == nil {
		return nil
	}

	return &model.NotificationModel{
		ID:             data.ID,
		DedupKey:       data.DedupKey,
		Channel:        string(data.Channel),
		RecipientClass: string(data.RecipientClass),
		Recipient:      data.Recipient,
		TemplateID:     data.TemplateID,
		Status:         string(data.Status),
		Payload:        datatypes.JSONMap(data.Payload),
		Metadata:       datatypes.NewJSONType(data.Metadata),
		BookingID:      data.Metadata.BookingID,
		AttributionID:  data.Metadata.AttributionID,
		ProviderRef:    data.ProviderRef,
		LastError:      data.LastError,
		SentAt:         data.SentAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

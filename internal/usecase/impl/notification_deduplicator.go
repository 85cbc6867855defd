package impl

import (
	"context"
	"log/slog"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type notificationDeduplicator struct {
	logger           *slog.Logger
	notificationRepo repository.NotificationRepository
	now              func() time.Time
}

// NotificationDeduplicatorParams holds dependencies for NotificationDeduplicator, injected by Fx.
type NotificationDeduplicatorParams struct {
	fx.In

	Logger           *slog.Logger
	NotificationRepo repository.NotificationRepository
}

// NewNotificationDeduplicator creates a new notification deduplicator instance
func NewNotificationDeduplicator(params NotificationDeduplicatorParams) usecase.NotificationDeduplicator {
	return &notificationDeduplicator{
		logger:           params.Logger,
		notificationRepo: params.NotificationRepo,
		now:              time.Now,
	}
}

// EnsureNotification returns the notification of key, creating it from build when absent.
// The unique dedup_key constraint decides concurrent creations; the lookup only saves a build.
func (d *notificationDeduplicator) EnsureNotification(ctx context.Context, key entity.DedupKey, build usecase.NotificationBuilder) (*entity.Notification, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}

	dedupKey := key.String()
	existing, err := d.notificationRepo.FindByDedupKey(ctx, dedupKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrNotificationNotFound) {
		return nil, false, errors.Wrap(err, "failed to look up dedup key")
	}

	notification, err := build()
	if err != nil {
		return nil, false, err
	}
	if notification == nil {
		return nil, false, domainerrors.ErrValidationFailed.WithDetails("notification builder returned nothing")
	}

	now := d.now()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.DedupKey = dedupKey
	notification.Channel = key.Channel
	notification.Recipient = entity.NormalizeRecipient(key.Channel, key.Recipient)
	notification.Status = entity.NotificationStatusPending
	notification.ProviderRef = ""
	notification.LastError = ""
	notification.SentAt = nil
	notification.CreatedAt = now
	notification.UpdatedAt = now

	stored, created, err := d.notificationRepo.CreateIfAbsent(ctx, notification)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create notification")
	}

	if !created {
		d.logger.Debug("Notification created concurrently, reusing",
			slog.String("dedup_key", dedupKey),
			slog.String("notification_id", stored.ID.String()),
		)
	}

	return stored, created, nil
}

package repository

import (
	"context"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationStatusUpdate describes a status change applied by the dispatcher.
type NotificationStatusUpdate struct {
	From        entity.NotificationStatus
	To          entity.NotificationStatus
	ProviderRef string
	LastError   string
	At          time.Time
}

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	// CreateIfAbsent inserts the notification unless its dedup key exists. The check is
	// enforced by a unique constraint; on conflict the stored row is returned with created=false.
	CreateIfAbsent(ctx context.Context, notification *entity.Notification) (stored *entity.Notification, created bool, err error)

	// FindByID retrieves a notification by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)

	// FindByDedupKey retrieves the notification of a dedup key.
	FindByDedupKey(ctx context.Context, dedupKey string) (*entity.Notification, error)

	// UpdateStatus changes the status when the current status equals update.From.
	// It reports whether the row was changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, update NotificationStatusUpdate) (bool, error)

	// ClaimStalePending refreshes updated_at of a PENDING row last touched before staleBefore.
	// Only one caller can win the claim.
	ClaimStalePending(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error)

	// FindByBooking lists the notifications whose metadata references the booking.
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Notification, error)

	// FindByAttribution lists the notifications whose metadata references the attribution.
	FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Notification, error)
}

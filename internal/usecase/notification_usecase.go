package usecase

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationBuilder produces the notification to create for a dedup key.
// It is only called when no notification exists for the key yet.
type NotificationBuilder func() (*entity.Notification, error)

// NotificationDeduplicator guarantees at most one notification per dedup key.
type NotificationDeduplicator interface {
	// EnsureNotification returns the existing notification of key, or creates a PENDING one from build.
	EnsureNotification(ctx context.Context, key entity.DedupKey, build NotificationBuilder) (notification *entity.Notification, created bool, err error)
}

// ChannelDispatcher sends a PENDING notification and records the outcome on its row.
type ChannelDispatcher interface {
	Dispatch(ctx context.Context, notification *entity.Notification, attachments []entity.Document) (*entity.Notification, error)
}

// DeliveryRequest is one recipient on one channel.
type DeliveryRequest struct {
	Key         entity.DedupKey
	Build       NotificationBuilder
	Attachments []entity.Document
}

// NotificationUsecase is the dedup and dispatch path shared by every trigger.
type NotificationUsecase interface {
	// Deliver creates the notification of req.Key at most once and dispatches it when created.
	Deliver(ctx context.Context, req DeliveryRequest) (*entity.DispatchResult, error)

	// ResetForResend flips a FAILED notification back to PENDING and dispatches it again.
	ResetForResend(ctx context.Context, notificationID uuid.UUID) (*entity.DispatchResult, error)

	// ListForBooking lists the notifications of a booking.
	ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Notification, error)

	// ListForAttribution lists the notifications of an attribution.
	ListForAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Notification, error)
}

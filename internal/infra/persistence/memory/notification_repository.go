package memory

import (
	"context"
	"sort"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"

	"github.com/google/uuid"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) CreateIfAbsent(_ context.Context, notification *entity.Notification) (*entity.Notification, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existingID, ok := r.s.notificationByKey[notification.DedupKey]; ok {
		return cloneNotification(r.s.notifications[existingID]), false, nil
	}

	stored := cloneNotification(notification)
	r.s.notifications[stored.ID] = stored
	r.s.notificationByKey[stored.DedupKey] = stored.ID

	return cloneNotification(stored), true, nil
}

func (r *notificationRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	notification, ok := r.s.notifications[id]
	if !ok {
		return nil, domainerrors.ErrNotificationNotFound
	}

	return cloneNotification(notification), nil
}

func (r *notificationRepository) FindByDedupKey(_ context.Context, dedupKey string) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.notificationByKey[dedupKey]
	if !ok {
		return nil, domainerrors.ErrNotificationNotFound
	}

	return cloneNotification(r.s.notifications[id]), nil
}

func (r *notificationRepository) UpdateStatus(_ context.Context, id uuid.UUID, update repository.NotificationStatusUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notification, ok := r.s.notifications[id]
	if !ok {
		return false, domainerrors.ErrNotificationNotFound
	}
	if notification.Status != update.From {
		return false, nil
	}

	notification.Status = update.To
	notification.ProviderRef = update.ProviderRef
	notification.LastError = update.LastError
	notification.UpdatedAt = update.At
	if update.To == entity.NotificationStatusSent {
		sentAt := update.At
		notification.SentAt = &sentAt
	}

	return true, nil
}

func (r *notificationRepository) ClaimStalePending(_ context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notification, ok := r.s.notifications[id]
	if !ok {
		return false, domainerrors.ErrNotificationNotFound
	}
	if notification.Status != entity.NotificationStatusPending || !notification.UpdatedAt.Before(staleBefore) {
		return false, nil
	}
	notification.UpdatedAt = now

	return true, nil
}

func (r *notificationRepository) FindByBooking(_ context.Context, bookingID uuid.UUID) ([]*entity.Notification, error) {
	return r.filter(func(n *entity.Notification) bool {
		return n.Metadata.BookingID != nil && *n.Metadata.BookingID == bookingID
	}), nil
}

func (r *notificationRepository) FindByAttribution(_ context.Context, attributionID uuid.UUID) ([]*entity.Notification, error) {
	return r.filter(func(n *entity.Notification) bool {
		return n.Metadata.AttributionID != nil && *n.Metadata.AttributionID == attributionID
	}), nil
}

func (r *notificationRepository) filter(match func(*entity.Notification) bool) []*entity.Notification {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var notifications []*entity.Notification
	for _, notification := range r.s.notifications {
		if match(notification) {
			notifications = append(notifications, cloneNotification(notification))
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
		}

		return notifications[i].DedupKey < notifications[j].DedupKey
	})

	return notifications
}

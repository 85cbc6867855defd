package impl

import (
	"context"
	"log/slog"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/domain/service"
	"attribution/internal/usecase"
	"attribution/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// A PENDING row untouched for this many send timeouts is considered abandoned.
const stalePendingFactor = 3

type notificationService struct {
	logger           *slog.Logger
	notificationRepo repository.NotificationRepository
	deduplicator     usecase.NotificationDeduplicator
	dispatcher       usecase.ChannelDispatcher
	documentGen      service.DocumentGenerator
	staleAfter       time.Duration
	now              func() time.Time
}

// NotificationServiceParams holds dependencies for NotificationService, injected by Fx.
type NotificationServiceParams struct {
	fx.In

	Logger           *slog.Logger
	NotificationRepo repository.NotificationRepository
	Deduplicator     usecase.NotificationDeduplicator
	Dispatcher       usecase.ChannelDispatcher
	DocumentGen      service.DocumentGenerator
	Config           *config.Config
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	notificationCfg := params.Config.Notification
	if notificationCfg == nil {
		notificationCfg = config.DefaultNotificationConfig()
	}

	return &notificationService{
		logger:           params.Logger,
		notificationRepo: params.NotificationRepo,
		deduplicator:     params.Deduplicator,
		dispatcher:       params.Dispatcher,
		documentGen:      params.DocumentGen,
		staleAfter:       stalePendingFactor * notificationCfg.SendTimeout,
		now:              time.Now,
	}
}

// Deliver creates the notification of req.Key at most once and dispatches it when created.
func (s *notificationService) Deliver(ctx context.Context, req usecase.DeliveryRequest) (*entity.DispatchResult, error) {
	build := func() (*entity.Notification, error) {
		notification, err := req.Build()
		if err != nil {
			return nil, err
		}
		if notification != nil && len(req.Attachments) > 0 {
			notification.Metadata.Attachments = attachmentsOf(req.Attachments)
		}

		return notification, nil
	}

	notification, created, err := s.deduplicator.EnsureNotification(ctx, req.Key, build)
	if err != nil {
		return nil, err
	}

	if !created {
		if !s.reclaimStale(ctx, notification) {
			return entity.NewDispatchResult(notification, entity.DispatchOutcomeAlreadyExists), nil
		}
		s.logger.Warn("Re-dispatching abandoned pending notification",
			slog.String("notification_id", notification.ID.String()),
			slog.String("dedup_key", notification.DedupKey),
		)
	}

	dispatched, err := s.dispatcher.Dispatch(ctx, notification, req.Attachments)
	if err != nil {
		return nil, err
	}

	return entity.NewDispatchResult(dispatched, outcomeOf(dispatched)), nil
}

// reclaimStale reports whether the caller won the right to dispatch a PENDING row
// left behind by an interrupted dispatch.
func (s *notificationService) reclaimStale(ctx context.Context, notification *entity.Notification) bool {
	if notification.Status != entity.NotificationStatusPending {
		return false
	}

	now := s.now()
	staleBefore := now.Add(-s.staleAfter)
	if !notification.UpdatedAt.Before(staleBefore) {
		return false
	}

	claimed, err := s.notificationRepo.ClaimStalePending(ctx, notification.ID, staleBefore, now)
	if err != nil {
		s.logger.Error("Failed to claim stale notification",
			slog.String("notification_id", notification.ID.String()),
			slog.Any("error", err),
		)

		return false
	}

	return claimed
}

// ResetForResend flips a FAILED notification back to PENDING and dispatches it again.
func (s *notificationService) ResetForResend(ctx context.Context, notificationID uuid.UUID) (*entity.DispatchResult, error) {
	notification, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.Status != entity.NotificationStatusFailed {
		return nil, domainerrors.ErrNotificationNotFailed.WithDetails(string(notification.Status))
	}

	changed, err := s.notificationRepo.UpdateStatus(ctx, notificationID, repository.NotificationStatusUpdate{
		From: entity.NotificationStatusFailed,
		To:   entity.NotificationStatusPending,
		At:   s.now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reset notification")
	}
	if !changed {
		return nil, domainerrors.ErrNotificationNotFailed
	}

	notification.Status = entity.NotificationStatusPending
	notification.LastError = ""
	attachments := s.regenerateAttachments(ctx, notification)

	s.logger.Info("Resending notification",
		slog.String("notification_id", notificationID.String()),
		slog.Int("attachments", len(attachments)),
	)

	dispatched, err := s.dispatcher.Dispatch(ctx, notification, attachments)
	if err != nil {
		return nil, err
	}

	return entity.NewDispatchResult(dispatched, outcomeOf(dispatched)), nil
}

// regenerateAttachments rebuilds the documents listed in the notification metadata.
// Documents are never stored, so a resend asks the generator again.
func (s *notificationService) regenerateAttachments(ctx context.Context, notification *entity.Notification) []entity.Document {
	meta := notification.Metadata
	if len(meta.Attachments) == 0 || meta.BookingID == nil || s.documentGen == nil {
		return nil
	}

	docs, err := s.documentGen.GenerateDocuments(ctx, *meta.BookingID, meta.Trigger)
	if err != nil {
		s.logger.Warn("Failed to regenerate documents, resending without attachments",
			slog.String("notification_id", notification.ID.String()),
			slog.Any("error", err),
		)

		return nil
	}

	wanted := make([]entity.DocumentType, 0, len(meta.Attachments))
	for _, attachment := range meta.Attachments {
		wanted = append(wanted, attachment.Type)
	}

	return SelectDocuments(docs, wanted)
}

// ListForBooking lists the notifications of a booking.
func (s *notificationService) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Notification, error) {
	return s.notificationRepo.FindByBooking(ctx, bookingID)
}

// ListForAttribution lists the notifications of an attribution.
func (s *notificationService) ListForAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Notification, error) {
	return s.notificationRepo.FindByAttribution(ctx, attributionID)
}

func outcomeOf(notification *entity.Notification) entity.DispatchOutcome {
	switch notification.Status {
	case entity.NotificationStatusSent:
		return entity.DispatchOutcomeSent
	case entity.NotificationStatusFailed:
		return entity.DispatchOutcomeFailed
	default:
		return entity.DispatchOutcomeAlreadyExists
	}
}

func attachmentsOf(docs []entity.Document) []entity.Attachment {
	attachments := make([]entity.Attachment, 0, len(docs))
	for _, doc := range docs {
		attachment := doc.Attachment()
		attachment.Checksum = util.Checksum(doc.Content)
		attachments = append(attachments, attachment)
	}

	return attachments
}

// countOutcomes tallies dispatch results by outcome.
func countOutcomes(results []*entity.DispatchResult) map[entity.DispatchOutcome]int {
	counts := make(map[entity.DispatchOutcome]int, 3)
	for _, result := range results {
		counts[result.Outcome]++
	}

	return counts
}

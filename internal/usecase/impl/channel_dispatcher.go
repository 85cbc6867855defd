package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	"attribution/internal/domain/repository"
	"attribution/internal/domain/service"
	"attribution/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type channelDispatcher struct {
	logger           *slog.Logger
	notificationRepo repository.NotificationRepository
	emailSender      service.EmailSender
	smsSender        service.SMSSender
	whatsAppSender   service.WhatsAppSender
	sendTimeout      time.Duration
	now              func() time.Time
}

// ChannelDispatcherParams holds dependencies for ChannelDispatcher, injected by Fx.
type ChannelDispatcherParams struct {
	fx.In

	Logger           *slog.Logger
	NotificationRepo repository.NotificationRepository
	EmailSender      service.EmailSender
	SMSSender        service.SMSSender
	WhatsAppSender   service.WhatsAppSender
	Config           *config.Config
}

// NewChannelDispatcher creates a new channel dispatcher instance
func NewChannelDispatcher(params ChannelDispatcherParams) usecase.ChannelDispatcher {
	notificationCfg := params.Config.Notification
	if notificationCfg == nil {
		notificationCfg = config.DefaultNotificationConfig()
	}

	return &channelDispatcher{
		logger:           params.Logger,
		notificationRepo: params.NotificationRepo,
		emailSender:      params.EmailSender,
		smsSender:        params.SMSSender,
		whatsAppSender:   params.WhatsAppSender,
		sendTimeout:      notificationCfg.SendTimeout,
		now:              time.Now,
	}
}

// Dispatch sends a PENDING notification and records SENT or FAILED on its row.
// Channel failures are recorded, not returned; only storage errors are returned.
func (d *channelDispatcher) Dispatch(ctx context.Context, notification *entity.Notification, attachments []entity.Document) (*entity.Notification, error) {
	if notification.Status != entity.NotificationStatusPending {
		return notification, nil
	}

	receipt, sendErr := d.send(ctx, notification, attachments)

	update := repository.NotificationStatusUpdate{
		From: entity.NotificationStatusPending,
		To:   entity.NotificationStatusSent,
		At:   d.now(),
	}
	switch {
	case sendErr != nil:
		update.To = entity.NotificationStatusFailed
		update.LastError = sendErr.Error()
	case !receipt.Delivered:
		update.To = entity.NotificationStatusFailed
		update.LastError = receipt.Reason
		update.ProviderRef = receipt.ProviderRef
	default:
		update.ProviderRef = receipt.ProviderRef
	}

	// The send is done; recording its outcome must not be lost to a cancelled caller.
	changed, err := d.notificationRepo.UpdateStatus(context.WithoutCancel(ctx), notification.ID, update)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record dispatch outcome")
	}
	if !changed {
		d.logger.Warn("Dispatch outcome already recorded",
			slog.String("notification_id", notification.ID.String()),
			slog.String("outcome", string(update.To)),
		)

		return d.notificationRepo.FindByID(context.WithoutCancel(ctx), notification.ID)
	}

	notification.Status = update.To
	notification.ProviderRef = update.ProviderRef
	notification.LastError = update.LastError
	notification.UpdatedAt = update.At
	if update.To == entity.NotificationStatusSent {
		sentAt := update.At
		notification.SentAt = &sentAt
	}

	if update.To == entity.NotificationStatusFailed {
		d.logger.Warn("Notification failed",
			slog.String("notification_id", notification.ID.String()),
			slog.String("channel", string(notification.Channel)),
			slog.String("recipient_class", string(notification.RecipientClass)),
			slog.String("reason", update.LastError),
		)
	}

	return notification, nil
}

func (d *channelDispatcher) send(ctx context.Context, notification *entity.Notification, attachments []entity.Document) (*service.DeliveryReceipt, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	var (
		receipt *service.DeliveryReceipt
		err     error
	)

	switch notification.Channel {
	case entity.ChannelEmail:
		if d.emailSender == nil {
			return nil, errors.New("email channel not configured")
		}
		receipt, err = d.emailSender.SendEmail(sendCtx, notification.Recipient, notification.TemplateID, notification.Payload, attachments)
	case entity.ChannelSMS:
		if d.smsSender == nil {
			return nil, errors.New("sms channel not configured")
		}
		receipt, err = d.smsSender.SendSMS(sendCtx, notification.Recipient, notification.Payload)
	case entity.ChannelWhatsApp:
		if d.whatsAppSender == nil {
			return nil, errors.New("whatsapp channel not configured")
		}
		receipt, err = d.whatsAppSender.SendWhatsApp(sendCtx, notification.Recipient, notification.TemplateID, TemplateVariables(notification.Payload))
	default:
		return nil, errors.Errorf("unsupported channel %q", notification.Channel)
	}

	if err == nil && sendCtx.Err() != nil {
		err = sendCtx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Errorf("send timed out after %s", d.sendTimeout)
		}

		return nil, errors.Wrap(err, "send failed")
	}
	if receipt == nil {
		return nil, errors.New("sender returned no receipt")
	}

	return receipt, nil
}

// TemplateVariables flattens a payload into WhatsApp template variables.
func TemplateVariables(payload map[string]any) map[string]string {
	variables := make(map[string]string, len(payload))
	for key, value := range payload {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			variables[key] = v
		case fmt.Stringer:
			variables[key] = v.String()
		default:
			variables[key] = fmt.Sprint(v)
		}
	}

	return variables
}

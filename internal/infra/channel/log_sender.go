// Package channel contains the outbound email, SMS and WhatsApp senders.
package channel

import (
	"context"
	"log/slog"

	"attribution/internal/domain/entity"
	"attribution/internal/domain/service"

	"github.com/google/uuid"
)

// LogSender accepts every message and only logs it. Used in development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs instead of delivering.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, to, templateID string, _ map[string]any, attachments []entity.Document) (*service.DeliveryReceipt, error) {
	return s.accept(ctx, entity.ChannelEmail, to,
		slog.String("template_id", templateID),
		slog.Int("attachments", len(attachments)),
	), nil
}

func (s *LogSender) SendSMS(ctx context.Context, to string, _ map[string]any) (*service.DeliveryReceipt, error) {
	return s.accept(ctx, entity.ChannelSMS, to), nil
}

func (s *LogSender) SendWhatsApp(ctx context.Context, to, templateID string, variables map[string]string) (*service.DeliveryReceipt, error) {
	return s.accept(ctx, entity.ChannelWhatsApp, to,
		slog.String("template_id", templateID),
		slog.Int("variables", len(variables)),
	), nil
}

func (s *LogSender) accept(ctx context.Context, channel entity.Channel, to string, attrs ...slog.Attr) *service.DeliveryReceipt {
	ref := "log-" + uuid.NewString()
	attrs = append(attrs,
		slog.String("channel", string(channel)),
		slog.String("to", to),
		slog.String("provider_ref", ref),
	)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "[LogChannel] Message accepted", attrs...)

	return &service.DeliveryReceipt{Delivered: true, ProviderRef: ref}
}

// Package service defines the external collaborators consumed by the engine.
package service

import (
	"context"

	"attribution/internal/domain/entity"
)

// DeliveryReceipt is the outcome reported by a channel sender.
type DeliveryReceipt struct {
	Delivered   bool   // false means the provider rejected the message
	ProviderRef string // provider message ID, when one was assigned
	Reason      string // rejection reason, when Delivered is false
}

// EmailSender sends a templated email with attachments.
type EmailSender interface {
	SendEmail(ctx context.Context, to, templateID string, payload map[string]any, attachments []entity.Document) (*DeliveryReceipt, error)
}

// SMSSender sends a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to string, payload map[string]any) (*DeliveryReceipt, error)
}

// WhatsAppSender sends a WhatsApp template message.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, templateID string, variables map[string]string) (*DeliveryReceipt, error)
}

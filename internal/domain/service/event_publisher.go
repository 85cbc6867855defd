package service

import (
	"context"
	"time"
)

// AttributionEvent is published whenever an attribution changes state
type AttributionEvent struct {
	RequestID      string    `json:"request_id,omitempty"` // For distributed tracing
	AttributionID  string    `json:"attribution_id"`
	BookingID      string    `json:"booking_id"`
	Status         string    `json:"status"`
	ProfessionalID string    `json:"professional_id,omitempty"` // Set on ACCEPTED
	EligibleCount  int       `json:"eligible_count,omitempty"`  // Set on BROADCASTING
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAttributionEvent publishes an attribution lifecycle event
	PublishAttributionEvent(ctx context.Context, event *AttributionEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

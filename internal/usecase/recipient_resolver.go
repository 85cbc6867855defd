package usecase

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// Recipient is one resolved (audience, channel, address) with the content it may see.
type Recipient struct {
	Class           entity.RecipientClass
	Channel         entity.Channel
	Address         string // email or phone
	Name            string
	TemplateID      string
	Purpose         string
	Payload         map[string]any
	AttachmentTypes []entity.DocumentType
	StaffID         *uuid.UUID
	ProfessionalID  *uuid.UUID
}

// RecipientResolver maps a booking or attribution to its recipient classes.
type RecipientResolver interface {
	// ResolveBookingRecipients returns the customer email and SMS plus one email per
	// active staff member subscribed to the trigger.
	ResolveBookingRecipients(ctx context.Context, booking *entity.Booking, trigger entity.Trigger) ([]Recipient, error)

	// ResolveProfessionalRecipients returns the professional broadcast email and, when a
	// phone is on file, the WhatsApp message.
	ResolveProfessionalRecipients(ctx context.Context, booking *entity.Booking, attribution *entity.Attribution, candidate *entity.Eligibility, professional *entity.Professional) ([]Recipient, error)
}

package entity

import (
	"fmt"
	"strings"
	"time"

	domainerrors "attribution/internal/domain/errors"

	"github.com/google/uuid"
)

// Channel is an outbound notification transport.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// NotificationStatus is the delivery state of a notification row.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// RecipientClass is the audience a notification is addressed to. The class
// decides the data visibility tier.
type RecipientClass string

const (
	RecipientClassCustomer     RecipientClass = "CUSTOMER"
	RecipientClassStaff        RecipientClass = "STAFF"
	RecipientClassProfessional RecipientClass = "PROFESSIONAL"
)

// Visibility is the client data tier a recipient may see.
type Visibility string

const (
	VisibilityFull    Visibility = "FULL"
	VisibilityLimited Visibility = "LIMITED"
)

// Visibility returns the data tier for the class.
func (c RecipientClass) Visibility() Visibility {
	if c == RecipientClassProfessional {
		return VisibilityLimited
	}

	return VisibilityFull
}

// DedupScope says whether a dedup key is anchored on a booking or an attribution.
type DedupScope string

const (
	DedupScopeBooking     DedupScope = "booking"
	DedupScopeAttribution DedupScope = "attribution"
)

// DedupKey identifies the one notification allowed for a
// (booking or attribution, recipient, channel, purpose) tuple.
// Subject, when set, stands for the recipient in the key so that a contact
// address edited between retries does not open a second notification.
type DedupKey struct {
	Scope     DedupScope
	ScopeID   uuid.UUID
	Recipient string
	Subject   string
	Channel   Channel
	Purpose   string
}

// ProfessionalSubject is the dedup subject of a professional, independent of their contact details.
func ProfessionalSubject(professionalID uuid.UUID) string {
	return "professional:" + professionalID.String()
}

// NormalizeRecipient lower-cases emails and strips formatting from phone numbers.
func NormalizeRecipient(channel Channel, recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if channel == ChannelEmail {
		return strings.ToLower(recipient)
	}

	var b strings.Builder
	for i, r := range recipient {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// String renders the key as stored in the unique dedup_key column.
func (k DedupKey) String() string {
	recipient := k.Subject
	if recipient == "" {
		recipient = NormalizeRecipient(k.Channel, k.Recipient)
	}

	return fmt.Sprintf("%s:%s|%s|%s|%s", k.Scope, k.ScopeID, recipient, k.Channel, k.Purpose)
}

// Validate rejects keys that cannot identify a recipient.
func (k DedupKey) Validate() error {
	switch {
	case k.ScopeID == uuid.Nil:
		return domainerrors.ErrValidationFailed.WithDetails("dedup key without booking or attribution id")
	case NormalizeRecipient(k.Channel, k.Recipient) == "":
		return domainerrors.ErrMissingRecipientContact.WithDetails(string(k.Channel) + " recipient is empty")
	case k.Purpose == "":
		return domainerrors.ErrValidationFailed.WithDetails("dedup key without purpose")
	}

	return nil
}

// NotificationMetadata links a notification to the objects it is about.
type NotificationMetadata struct {
	BookingID      *uuid.UUID   `json:"bookingId,omitempty"`
	AttributionID  *uuid.UUID   `json:"attributionId,omitempty"`
	ProfessionalID *uuid.UUID   `json:"professionalId,omitempty"`
	StaffID        *uuid.UUID   `json:"staffId,omitempty"`
	Trigger        Trigger      `json:"trigger,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Source         string       `json:"source,omitempty"`
}

// Notification is created exactly once per dedup key.
type Notification struct {
	ID             uuid.UUID            `json:"id"`
	DedupKey       string               `json:"dedup_key"`
	Channel        Channel              `json:"channel"`
	RecipientClass RecipientClass       `json:"recipient_class"`
	Recipient      string               `json:"recipient"` // Email address or phone number.
	TemplateID     string               `json:"template_id"`
	Status         NotificationStatus   `json:"status"`
	Payload        map[string]any       `json:"payload"`
	Metadata       NotificationMetadata `json:"metadata"`
	ProviderRef    string               `json:"provider_ref,omitempty"`
	LastError      string               `json:"last_error,omitempty"`
	SentAt         *time.Time           `json:"sent_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// DispatchOutcome is the single result type of the dedup and dispatch path.
type DispatchOutcome string

const (
	DispatchOutcomeSent          DispatchOutcome = "SENT"
	DispatchOutcomeFailed        DispatchOutcome = "FAILED"
	DispatchOutcomeAlreadyExists DispatchOutcome = "ALREADY_EXISTS"
)

// DispatchResult reports what happened for one recipient on one channel.
type DispatchResult struct {
	NotificationID uuid.UUID          `json:"notification_id"`
	Channel        Channel            `json:"channel"`
	RecipientClass RecipientClass     `json:"recipient_class"`
	Recipient      string             `json:"recipient"`
	Outcome        DispatchOutcome    `json:"outcome"`
	Status         NotificationStatus `json:"status"` // Row status after the call.
}

// NewDispatchResult summarizes n with outcome.
func NewDispatchResult(n *Notification, outcome DispatchOutcome) *DispatchResult {
	return &DispatchResult{
		NotificationID: n.ID,
		Channel:        n.Channel,
		RecipientClass: n.RecipientClass,
		Recipient:      n.Recipient,
		Outcome:        outcome,
		Status:         n.Status,
	}
}

package impl

import (
	"context"
	"testing"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/service"
	"attribution/internal/infra/persistence/memory"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenService renders tokens as "<decision>:<professional>".
type fakeTokenService struct{}

func (fakeTokenService) IssueResponseToken(_, professionalID uuid.UUID, decision entity.ResponseDecision) (string, error) {
	return string(decision) + ":" + professionalID.String(), nil
}

func (fakeTokenService) ParseResponseToken(string) (*service.ResponseClaims, error) {
	return nil, domainerrors.ErrInvalidResponseToken
}

func (fakeTokenService) ResponseURL(token string) string {
	return "https://book.example.com/responses?token=" + token
}

func newTestResolver(store *memory.Store, tokens service.ResponseTokenService) usecase.RecipientResolver {
	return NewRecipientResolver(RecipientResolverParams{
		Logger:       newTestLogger(),
		StaffRepo:    store.Staff(),
		TokenService: tokens,
		Config:       newTestConfig(),
	})
}

func recipientsOf(recipients []usecase.Recipient, class entity.RecipientClass, channel entity.Channel) []usecase.Recipient {
	var matched []usecase.Recipient
	for _, recipient := range recipients {
		if recipient.Class == class && recipient.Channel == channel {
			matched = append(matched, recipient)
		}
	}

	return matched
}

func TestRecipientResolver_ResolveBookingRecipients(t *testing.T) {
	store := memory.NewStore()
	accounting := newTestStaff("accounting@company.example.com", entity.TriggerPaymentCompleted)
	store.SeedStaff(accounting)
	store.SeedStaff(newTestStaff("ops@company.example.com", entity.TriggerBookingConfirmed))
	store.SeedStaff(newTestStaff("sales@company.example.com", entity.TriggerBookingConfirmed))
	duplicate := newTestStaff("Accounting@Company.example.com", entity.TriggerPaymentCompleted)
	store.SeedStaff(duplicate)
	inactive := newTestStaff("former@company.example.com", entity.TriggerPaymentCompleted)
	inactive.Active = false
	store.SeedStaff(inactive)
	store.SeedStaff(newTestStaff("not-an-email", entity.TriggerPaymentCompleted))

	booking := newTestBooking()
	recipients, err := newTestResolver(store, nil).ResolveBookingRecipients(context.Background(), booking, entity.TriggerPaymentCompleted)
	require.NoError(t, err)
	require.Len(t, recipients, 3)

	customerEmail := recipientsOf(recipients, entity.RecipientClassCustomer, entity.ChannelEmail)
	require.Len(t, customerEmail, 1)
	assert.Equal(t, "jane.doe@example.com", customerEmail[0].Address)
	assert.Equal(t, "customer_payment_completed", customerEmail[0].TemplateID)
	assert.Equal(t, "payment_completed", customerEmail[0].Purpose)
	assert.Equal(t, []entity.DocumentType{entity.DocumentTypeInvoice}, customerEmail[0].AttachmentTypes)
	assert.Equal(t, booking.Customer.Email, customerEmail[0].Payload["customer_email"])

	customerSMS := recipientsOf(recipients, entity.RecipientClassCustomer, entity.ChannelSMS)
	require.Len(t, customerSMS, 1)
	assert.Equal(t, "+33612345678", customerSMS[0].Address)
	assert.Empty(t, customerSMS[0].AttachmentTypes)

	staff := recipientsOf(recipients, entity.RecipientClassStaff, entity.ChannelEmail)
	require.Len(t, staff, 1)
	assert.Equal(t, "accounting@company.example.com", staff[0].Address)
	assert.Equal(t, []entity.DocumentType{entity.DocumentTypeInvoice}, staff[0].AttachmentTypes)
	require.NotNil(t, staff[0].StaffID)
	assert.Contains(t, []uuid.UUID{accounting.ID, duplicate.ID}, *staff[0].StaffID)
}

func TestRecipientResolver_ResolveBookingRecipients_CustomerContacts(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		phone        string
		wantErr      error
		wantChannels []entity.Channel
	}{
		{
			name:         "email and phone",
			email:        "jane.doe@example.com",
			phone:        "+33 6 12 34 56 78",
			wantChannels: []entity.Channel{entity.ChannelEmail, entity.ChannelSMS},
		},
		{
			name:         "no phone",
			email:        "jane.doe@example.com",
			wantChannels: []entity.Channel{entity.ChannelEmail},
		},
		{
			name:    "missing email",
			phone:   "+33612345678",
			wantErr: domainerrors.ErrMissingRecipientContact,
		},
		{
			name:    "malformed email",
			email:   "jane.doe",
			wantErr: domainerrors.ErrMissingRecipientContact,
		},
		{
			name:    "phone without country code",
			email:   "jane.doe@example.com",
			phone:   "0612345678",
			wantErr: domainerrors.ErrMissingRecipientContact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := newTestBooking()
			booking.Customer.Email = tt.email
			booking.Customer.Phone = tt.phone

			recipients, err := newTestResolver(memory.NewStore(), nil).
				ResolveBookingRecipients(context.Background(), booking, entity.TriggerBookingConfirmed)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, recipients)

				return
			}

			require.NoError(t, err)
			channels := make([]entity.Channel, 0, len(recipients))
			for _, recipient := range recipients {
				channels = append(channels, recipient.Channel)
			}
			assert.Equal(t, tt.wantChannels, channels)
		})
	}
}

func TestRecipientResolver_ResolveBookingRecipients_InvalidTrigger(t *testing.T) {
	_, err := newTestResolver(memory.NewStore(), nil).
		ResolveBookingRecipients(context.Background(), newTestBooking(), entity.TriggerAttributionBroadcast)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidTrigger)
}

func TestRecipientResolver_ResolveProfessionalRecipients_LimitedView(t *testing.T) {
	booking := newTestBooking()
	deadline := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	attribution := &entity.Attribution{
		ID:                uuid.New(),
		BookingID:         booking.ID,
		Status:            entity.AttributionStatusBroadcasting,
		BroadcastDeadline: &deadline,
	}
	professional := newTestProfessional("pro", northOf(serviceLocation, 12))
	professional.Phone = "+33 7 00 00 00 01"
	candidate := &entity.Eligibility{AttributionID: attribution.ID, ProfessionalID: professional.ID, DistanceKm: 12.3}

	recipients, err := newTestResolver(memory.NewStore(), fakeTokenService{}).
		ResolveProfessionalRecipients(context.Background(), booking, attribution, candidate, professional)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	email, whatsApp := recipients[0], recipients[1]
	assert.Equal(t, entity.ChannelEmail, email.Channel)
	assert.Equal(t, "pro@pros.example.com", email.Address)
	assert.Equal(t, "professional-attribution", email.TemplateID)
	assert.Equal(t, "attribution_broadcast", email.Purpose)
	assert.Equal(t, []entity.DocumentType{entity.DocumentTypeMissionBrief, entity.DocumentTypeResponseQRCode}, email.AttachmentTypes)
	assert.Equal(t, entity.ChannelWhatsApp, whatsApp.Channel)
	assert.Equal(t, "+33700000001", whatsApp.Address)
	assert.Empty(t, whatsApp.AttachmentTypes)

	for _, recipient := range recipients {
		assert.Equal(t, entity.RecipientClassProfessional, recipient.Class)
		assert.Equal(t, entity.VisibilityLimited, recipient.Class.Visibility())
		require.NotNil(t, recipient.ProfessionalID)
		assert.Equal(t, professional.ID, *recipient.ProfessionalID)

		payload := recipient.Payload
		assert.Equal(t, "Jane D.", payload["client_name"])
		assert.Equal(t, "75004", payload["postal_code"])
		assert.Equal(t, 12.3, payload["distance_km"])
		assert.Equal(t, "2026-03-03T09:00:00Z", payload["respond_before"])
		assert.Equal(t, "https://book.example.com/responses?token=ACCEPT:"+professional.ID.String(), payload["accept_url"])
		assert.Equal(t, "https://book.example.com/responses?token=DECLINE:"+professional.ID.String(), payload["decline_url"])
		for _, hidden := range []string{"customer_email", "customer_phone", "customer_last_name", "total_amount"} {
			assert.NotContains(t, payload, hidden)
		}
	}
}

func TestRecipientResolver_ResolveProfessionalRecipients_WhatsAppNeedsE164(t *testing.T) {
	tests := []struct {
		name         string
		phone        string
		wantWhatsApp bool
	}{
		{name: "no phone", phone: "", wantWhatsApp: false},
		{name: "national format", phone: "07 00 00 00 01", wantWhatsApp: false},
		{name: "e164", phone: "+447700900123", wantWhatsApp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := newTestBooking()
			attribution := &entity.Attribution{ID: uuid.New(), BookingID: booking.ID, Status: entity.AttributionStatusBroadcasting}
			professional := newTestProfessional("pro", northOf(serviceLocation, 3))
			professional.Phone = tt.phone

			recipients, err := newTestResolver(memory.NewStore(), nil).
				ResolveProfessionalRecipients(context.Background(), booking, attribution, nil, professional)

			require.NoError(t, err)
			assert.Len(t, recipientsOf(recipients, entity.RecipientClassProfessional, entity.ChannelEmail), 1)
			assert.Equal(t, tt.wantWhatsApp, len(recipientsOf(recipients, entity.RecipientClassProfessional, entity.ChannelWhatsApp)) == 1)
			assert.NotContains(t, recipients[0].Payload, "accept_url")
		})
	}
}

func TestRecipientResolver_ResolveProfessionalRecipients_MissingEmail(t *testing.T) {
	booking := newTestBooking()
	attribution := &entity.Attribution{ID: uuid.New(), BookingID: booking.ID}
	professional := newTestProfessional("pro", northOf(serviceLocation, 3))
	professional.Email = ""

	_, err := newTestResolver(memory.NewStore(), nil).
		ResolveProfessionalRecipients(context.Background(), booking, attribution, nil, professional)

	assert.ErrorIs(t, err, domainerrors.ErrMissingRecipientContact)
	assert.True(t, domainerrors.IsValidation(err))
}

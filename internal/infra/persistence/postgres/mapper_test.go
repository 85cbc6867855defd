package postgres

import (
	"testing"
	"time"

	"attribution/internal/domain/entity"
	"attribution/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNotificationDomain_IndexesMetadataReferences(t *testing.T) {
	bookingID := uuid.New()
	attributionID := uuid.New()
	notification := &entity.Notification{
		ID:       uuid.New(),
		DedupKey: "attribution:" + attributionID.String() + "|pro@example.com|EMAIL|attribution_broadcast",
		Channel:  entity.ChannelEmail,
		Status:   entity.NotificationStatusPending,
		Payload:  map[string]any{"booking_reference": "BK-1"},
		Metadata: entity.NotificationMetadata{
			BookingID:     &bookingID,
			AttributionID: &attributionID,
			Trigger:       entity.TriggerAttributionBroadcast,
		},
	}

	notificationM := fromNotificationDomain(notification)

	require.NotNil(t, notificationM.BookingID)
	require.NotNil(t, notificationM.AttributionID)
	assert.Equal(t, bookingID, *notificationM.BookingID)
	assert.Equal(t, attributionID, *notificationM.AttributionID)

	back := toNotificationDomain(notificationM)
	assert.Equal(t, notification.Metadata, back.Metadata)
	assert.Equal(t, "BK-1", back.Payload["booking_reference"])
}

func TestFromReminderDomain_RecipientKey(t *testing.T) {
	professionalID := uuid.New()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	customer := fromReminderDomain(&entity.ScheduledReminder{BookingID: uuid.New(), Type: "24H", ScheduledAt: at})
	professional := fromReminderDomain(&entity.ScheduledReminder{
		BookingID:      uuid.New(),
		ProfessionalID: &professionalID,
		Type:           "24H",
		ScheduledAt:    at,
	})

	assert.Equal(t, "customer", customer.RecipientKey)
	assert.Equal(t, professionalID.String(), professional.RecipientKey)
}

func TestToBookingDomain_MissingCoordinates(t *testing.T) {
	lat := 48.8566

	booking := toBookingDomain(&model.BookingModel{ID: uuid.New(), Latitude: &lat})

	assert.Nil(t, booking.Location.Coordinates)
}

func TestToStaffDomain_ConvertsTriggers(t *testing.T) {
	staff := toStaffDomain(&model.StaffMemberModel{
		ID:       uuid.New(),
		Email:    "ops@example.com",
		Active:   true,
		Triggers: []string{string(entity.TriggerBookingConfirmed)},
	})

	assert.True(t, staff.SubscribedTo(entity.TriggerBookingConfirmed))
	assert.False(t, staff.SubscribedTo(entity.TriggerBookingCancelled))
}

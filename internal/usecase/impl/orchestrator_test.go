package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/service"
	mockSvc "attribution/internal/mocks/service"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const customerEmail = "jane.doe@example.com"

type candidateSet struct {
	near    *entity.Professional
	far     *entity.Professional
	outside *entity.Professional
}

// seedCandidates stores professionals at 12km, 140km and 200km from the service location.
func seedCandidates(engine *testEngine) candidateSet {
	set := candidateSet{
		near:    newTestProfessional("near", northOf(serviceLocation, 12)),
		far:     newTestProfessional("far", northOf(serviceLocation, 140)),
		outside: newTestProfessional("outside", northOf(serviceLocation, 200)),
	}
	set.near.Phone = "+33700000001"

	engine.store.SeedProfessional(set.near)
	engine.store.SeedProfessional(set.far)
	engine.store.SeedProfessional(set.outside)

	return set
}

func seedBooking(engine *testEngine) *entity.Booking {
	booking := newTestBooking()
	engine.store.SeedBooking(booking)

	return booking
}

func startRequest(booking *entity.Booking) usecase.StartAttributionRequest {
	return usecase.StartAttributionRequest{
		BookingID:       booking.ID,
		ServiceLocation: serviceLocation,
		ServiceType:     testServiceType,
		MaxRadiusKm:     150,
	}
}

func outcomesOf(results []*entity.DispatchResult) []entity.DispatchOutcome {
	outcomes := make([]entity.DispatchOutcome, 0, len(results))
	for _, result := range results {
		outcomes = append(outcomes, result.Outcome)
	}

	return outcomes
}

func uniformOutcomes(outcome entity.DispatchOutcome, n int) []entity.DispatchOutcome {
	outcomes := make([]entity.DispatchOutcome, n)
	for i := range outcomes {
		outcomes[i] = outcome
	}

	return outcomes
}

type busyLocker struct{}

func (busyLocker) TryAcquire(context.Context, string) (func(), bool, error) {
	return nil, false, nil
}

type brokenLocker struct{}

func (brokenLocker) TryAcquire(context.Context, string) (func(), bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func TestOrchestrator_OnBookingTrigger_PaymentCompleted(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)

	subscribed := newTestStaff("accounting@company.example.com", entity.TriggerPaymentCompleted)
	engine.store.SeedStaff(subscribed)
	engine.store.SeedStaff(newTestStaff("ops@company.example.com", entity.TriggerBookingConfirmed))
	engine.store.SeedStaff(newTestStaff("support@company.example.com", entity.TriggerBookingCancelled))

	report, err := engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerPaymentCompleted, usecase.TriggerOptions{})

	require.NoError(t, err)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeSent, 3), outcomesOf(report.Deliveries))
	assert.Equal(t, 3, report.RemindersCreated)
	assert.Equal(t, []entity.Trigger{entity.TriggerPaymentCompleted}, engine.documents.calls())

	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, customerEmail))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelSMS, "+33612345678"))

	var staffEmails []sentMessage
	for _, msg := range engine.sender.messages(entity.ChannelEmail) {
		if msg.To != customerEmail {
			staffEmails = append(staffEmails, msg)
		}
	}
	require.Len(t, staffEmails, 1)
	assert.Equal(t, subscribed.Email, staffEmails[0].To)
	require.NotEmpty(t, staffEmails[0].Attachments)
	assert.Equal(t, entity.DocumentTypeInvoice, staffEmails[0].Attachments[0].Type)

	notifications, err := engine.orchestrator.notifications.ListForBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for _, notification := range notifications {
		if notification.RecipientClass != entity.RecipientClassStaff {
			continue
		}
		require.NotNil(t, notification.Metadata.StaffID)
		assert.Equal(t, subscribed.ID, *notification.Metadata.StaffID)
		require.Len(t, notification.Metadata.Attachments, 1)
		assert.Equal(t, entity.DocumentTypeInvoice, notification.Metadata.Attachments[0].Type)
	}
}

func TestOrchestrator_OnBookingTrigger_Idempotent(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)

	first, err := engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerBookingConfirmed, usecase.TriggerOptions{})
	require.NoError(t, err)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeSent, 2), outcomesOf(first.Deliveries))
	assert.Equal(t, 3, first.RemindersCreated)

	second, err := engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerBookingConfirmed, usecase.TriggerOptions{})
	require.NoError(t, err)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeAlreadyExists, 2), outcomesOf(second.Deliveries))
	assert.Zero(t, second.RemindersCreated)

	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, customerEmail))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelSMS, "+33612345678"))
}

func TestOrchestrator_OnBookingTrigger_ConcurrentInvocations(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	engine.store.SeedStaff(newTestStaff("accounting@company.example.com", entity.TriggerPaymentCompleted))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerPaymentCompleted, usecase.TriggerOptions{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, customerEmail))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, "accounting@company.example.com"))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelSMS, "+33612345678"))

	notifications, err := engine.orchestrator.notifications.ListForBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, notifications, 3)

	reminders, err := engine.store.Reminders().FindByBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, reminders, 3)
}

func TestOrchestrator_OnBookingTrigger_SkipStaff(t *testing.T) {
	engine := newTestEngine(t)
	booking := seedBooking(engine)
	engine.store.SeedStaff(newTestStaff("accounting@company.example.com", entity.TriggerPaymentCompleted))

	report, err := engine.orchestrator.OnBookingTrigger(context.Background(), booking.ID, entity.TriggerPaymentCompleted,
		usecase.TriggerOptions{SkipStaff: true, SkipReminders: true})

	require.NoError(t, err)
	assert.Len(t, report.Deliveries, 2)
	assert.Zero(t, report.RemindersCreated)
	assert.Zero(t, engine.sender.countTo(entity.ChannelEmail, "accounting@company.example.com"))
}

func TestOrchestrator_OnBookingTrigger_RejectedChannelDoesNotStopOthers(t *testing.T) {
	engine := newTestEngine(t)
	booking := seedBooking(engine)
	engine.sender.reject = map[string]string{customerEmail: "mailbox full"}

	report, err := engine.orchestrator.OnBookingTrigger(context.Background(), booking.ID, entity.TriggerBookingConfirmed, usecase.TriggerOptions{})

	require.NoError(t, err)
	outcomes := make(map[entity.Channel]entity.DispatchOutcome, len(report.Deliveries))
	for _, delivery := range report.Deliveries {
		outcomes[delivery.Channel] = delivery.Outcome
	}
	assert.Equal(t, map[entity.Channel]entity.DispatchOutcome{
		entity.ChannelEmail: entity.DispatchOutcomeFailed,
		entity.ChannelSMS:   entity.DispatchOutcomeSent,
	}, outcomes)
}

func TestOrchestrator_OnBookingTrigger_NothingWrittenOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(engine *testEngine, booking *entity.Booking) uuid.UUID
		trigger entity.Trigger
		check   func(t *testing.T, err error)
	}{
		{
			name: "missing customer email",
			prepare: func(engine *testEngine, booking *entity.Booking) uuid.UUID {
				booking.Customer.Email = ""
				engine.store.SeedBooking(booking)

				return booking.ID
			},
			trigger: entity.TriggerPaymentCompleted,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrMissingRecipientContact)
			},
		},
		{
			name: "invalid trigger",
			prepare: func(_ *testEngine, booking *entity.Booking) uuid.UUID {
				return booking.ID
			},
			trigger: entity.TriggerAttributionBroadcast,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrInvalidTrigger)
			},
		},
		{
			name: "unknown booking",
			prepare: func(_ *testEngine, _ *entity.Booking) uuid.UUID {
				return uuid.New()
			},
			trigger: entity.TriggerPaymentCompleted,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domainerrors.ErrBookingNotFound)
			},
		},
		{
			name: "document generation failure",
			prepare: func(engine *testEngine, booking *entity.Booking) uuid.UUID {
				engine.documents.err = errors.New("renderer unavailable")

				return booking.ID
			},
			trigger: entity.TriggerPaymentCompleted,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "renderer unavailable")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			ctx := context.Background()
			booking := seedBooking(engine)
			bookingID := tt.prepare(engine, booking)

			report, err := engine.orchestrator.OnBookingTrigger(ctx, bookingID, tt.trigger, usecase.TriggerOptions{})

			require.Error(t, err)
			tt.check(t, err)
			assert.Nil(t, report)

			notifications, err := engine.orchestrator.notifications.ListForBooking(ctx, booking.ID)
			require.NoError(t, err)
			assert.Empty(t, notifications)

			reminders, err := engine.store.Reminders().FindByBooking(ctx, booking.ID)
			require.NoError(t, err)
			assert.Empty(t, reminders)
		})
	}
}

func TestOrchestrator_StartAttribution_BroadcastsToCandidatesWithinRadius(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	result, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))

	require.NoError(t, err)
	assert.Equal(t, usecase.AttributionOutcomeBroadcast, result.Outcome)
	assert.Equal(t, entity.AttributionStatusBroadcasting, result.Status)
	assert.Equal(t, 2, result.EligibleCount)
	assert.False(t, result.Reused)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeSent, 3), outcomesOf(result.Deliveries))

	rows, err := engine.store.Eligibility().FindByAttribution(ctx, result.AttributionID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, candidates.near.ID, rows[0].ProfessionalID)
	assert.Equal(t, candidates.far.ID, rows[1].ProfessionalID)
	for _, row := range rows {
		assert.True(t, row.IsEligible)
		assert.True(t, row.Notified)
		assert.NotNil(t, row.NotifiedAt)
	}

	_, err = engine.store.Eligibility().Find(ctx, result.AttributionID, candidates.outside.ID)
	assert.ErrorIs(t, err, domainerrors.ErrEligibilityNotFound)
	assert.Zero(t, engine.sender.countTo(entity.ChannelEmail, candidates.outside.Email))

	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelWhatsApp, "+33700000001"))
	for _, msg := range engine.sender.messages(entity.ChannelEmail) {
		assert.NotContains(t, msg.Payload, "customer_email")
		assert.NotContains(t, msg.Payload, "customer_phone")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, entity.DocumentTypeMissionBrief, msg.Attachments[0].Type)
	}
	assert.Equal(t, []entity.Trigger{entity.TriggerAttributionBroadcast}, engine.documents.calls())

	notifications, err := engine.orchestrator.notifications.ListForAttribution(ctx, result.AttributionID)
	require.NoError(t, err)
	assert.Len(t, notifications, 3)
}

func TestOrchestrator_StartAttribution_ReusesActiveRound(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	first, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	second, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	assert.Equal(t, first.AttributionID, second.AttributionID)
	assert.True(t, second.Reused)
	assert.Equal(t, entity.AttributionStatusBroadcasting, second.Status)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeAlreadyExists, 3), outcomesOf(second.Deliveries))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, candidates.near.Email))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, candidates.far.Email))
}

func TestOrchestrator_StartAttribution_ConcurrentCallsShareOneRound(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[uuid.UUID]struct{})
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			ids[result.AttributionID] = struct{}{}
		}()
	}
	wg.Wait()

	require.Len(t, ids, 1)

	active, err := engine.store.Attributions().FindActiveByBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, active.ID)
	assert.Equal(t, entity.AttributionStatusBroadcasting, active.Status)
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, candidates.near.Email))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelWhatsApp, "+33700000001"))
}

func TestOrchestrator_StartAttribution_RetryAfterContactChange(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	first, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	candidates.near.Email = "near.new@pros.example.com"
	candidates.near.Phone = "+33700000099"
	engine.store.SeedProfessional(candidates.near)

	second, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	assert.Equal(t, first.AttributionID, second.AttributionID)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeAlreadyExists, 3), outcomesOf(second.Deliveries))

	notifications, err := engine.orchestrator.notifications.ListForAttribution(ctx, first.AttributionID)
	require.NoError(t, err)
	perChannel := make(map[entity.Channel]int)
	for _, notification := range notifications {
		if notification.Metadata.ProfessionalID != nil && *notification.Metadata.ProfessionalID == candidates.near.ID {
			perChannel[notification.Channel]++
		}
	}
	assert.Equal(t, map[entity.Channel]int{entity.ChannelEmail: 1, entity.ChannelWhatsApp: 1}, perChannel)
	assert.Zero(t, engine.sender.countTo(entity.ChannelEmail, "near.new@pros.example.com"))
	assert.Zero(t, engine.sender.countTo(entity.ChannelWhatsApp, "+33700000099"))
}

func TestOrchestrator_StartAttribution_WhatsAppFollowsSentEmail(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)
	engine.sender.reject = map[string]string{candidates.near.Email: "mailbox full"}

	result, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))

	require.NoError(t, err)
	assert.Equal(t, []entity.DispatchOutcome{entity.DispatchOutcomeFailed, entity.DispatchOutcomeSent}, outcomesOf(result.Deliveries))
	assert.Zero(t, engine.sender.countTo(entity.ChannelWhatsApp, "+33700000001"))

	notifications, err := engine.orchestrator.notifications.ListForAttribution(ctx, result.AttributionID)
	require.NoError(t, err)
	for _, notification := range notifications {
		assert.NotEqual(t, entity.ChannelWhatsApp, notification.Channel)
	}

	row, err := engine.store.Eligibility().Find(ctx, result.AttributionID, candidates.near.ID)
	require.NoError(t, err)
	assert.False(t, row.Notified)
}

func TestOrchestrator_StartAttribution_CancelledMidBroadcast(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)
	engine.orchestrator.fanOutWorkers = 1

	var cancelOnce sync.Once
	engine.sender.onSend = func(ctx context.Context, msg sentMessage) {
		if msg.Channel != entity.ChannelEmail {
			return
		}
		cancelOnce.Do(func() {
			attributionID, _ := msg.Payload["attribution_id"].(string)
			_, err := engine.orchestrator.CancelAttribution(ctx, uuid.MustParse(attributionID))
			assert.NoError(t, err)
		})
	}

	result, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	assert.Equal(t, 2, result.EligibleCount)
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, candidates.near.Email))
	assert.Zero(t, engine.sender.countTo(entity.ChannelEmail, candidates.far.Email))

	notifications, err := engine.orchestrator.notifications.ListForAttribution(ctx, result.AttributionID)
	require.NoError(t, err)
	require.NotEmpty(t, notifications)
	for _, notification := range notifications {
		require.NotNil(t, notification.Metadata.ProfessionalID)
		assert.Equal(t, candidates.near.ID, *notification.Metadata.ProfessionalID)
		if notification.Channel == entity.ChannelEmail {
			assert.Equal(t, entity.NotificationStatusSent, notification.Status)
		}
	}

	row, err := engine.store.Eligibility().Find(ctx, result.AttributionID, candidates.far.ID)
	require.NoError(t, err)
	assert.False(t, row.Notified)

	attribution, err := engine.store.Attributions().FindByID(ctx, result.AttributionID)
	require.NoError(t, err)
	assert.Equal(t, entity.AttributionStatusCancelled, attribution.Status)
}

func TestOrchestrator_StartAttribution_OutlivesCancelledCaller(t *testing.T) {
	engine := newTestEngine(t)
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)
	engine.sender.onSend = func(ctx context.Context, _ sentMessage) {
		assert.NoError(t, ctx.Err())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))

	require.NoError(t, err)
	assert.Equal(t, uniformOutcomes(entity.DispatchOutcomeSent, 3), outcomesOf(result.Deliveries))
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelEmail, candidates.near.Email))
}

func TestOrchestrator_StartAttribution_NoCandidatesThenRetry(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)

	first, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	assert.Equal(t, usecase.AttributionOutcomeNoCandidates, first.Outcome)
	assert.Equal(t, entity.AttributionStatusPending, first.Status)
	assert.Zero(t, first.EligibleCount)

	engine.store.SeedProfessional(newTestProfessional("late", northOf(serviceLocation, 30)))

	second, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	assert.Equal(t, first.AttributionID, second.AttributionID)
	assert.True(t, second.Reused)
	assert.Equal(t, usecase.AttributionOutcomeBroadcast, second.Outcome)
	assert.Equal(t, 1, second.EligibleCount)
}

func TestOrchestrator_StartAttribution_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		modify func(req *usecase.StartAttributionRequest)
	}{
		{name: "missing booking", modify: func(req *usecase.StartAttributionRequest) { req.BookingID = uuid.Nil }},
		{name: "missing service type", modify: func(req *usecase.StartAttributionRequest) { req.ServiceType = "" }},
		{name: "negative radius", modify: func(req *usecase.StartAttributionRequest) { req.MaxRadiusKm = -5 }},
		{name: "latitude out of range", modify: func(req *usecase.StartAttributionRequest) { req.ServiceLocation.Latitude = 95 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			req := startRequest(seedBooking(engine))
			tt.modify(&req)

			result, err := engine.orchestrator.StartAttribution(context.Background(), req)

			require.Error(t, err)
			assert.True(t, domainerrors.IsValidation(err))
			assert.Nil(t, result)
		})
	}
}

func TestOrchestrator_StartAttribution_CancelledBooking(t *testing.T) {
	engine := newTestEngine(t)
	booking := newTestBooking()
	booking.Status = entity.BookingStatusCancelled
	engine.store.SeedBooking(booking)
	seedCandidates(engine)

	_, err := engine.orchestrator.StartAttribution(context.Background(), startRequest(booking))

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	_, err = engine.store.Attributions().FindActiveByBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAttributionNotFound)
}

func TestOrchestrator_StartAttribution_LeaseHeldElsewhere(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	seedCandidates(engine)

	first, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	engine.orchestrator.locker = busyLocker{}
	second, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))

	require.NoError(t, err)
	assert.Equal(t, usecase.AttributionOutcomeInProgress, second.Outcome)
	assert.Equal(t, first.AttributionID, second.AttributionID)
	assert.Equal(t, 2, second.EligibleCount)
	assert.Empty(t, second.Deliveries)
}

func TestOrchestrator_StartAttribution_LeaseUnavailable(t *testing.T) {
	engine := newTestEngine(t)
	booking := seedBooking(engine)
	seedCandidates(engine)
	engine.orchestrator.locker = brokenLocker{}

	result, err := engine.orchestrator.StartAttribution(context.Background(), startRequest(booking))

	require.NoError(t, err)
	assert.Equal(t, usecase.AttributionOutcomeBroadcast, result.Outcome)
	assert.Equal(t, 2, result.EligibleCount)
}

func TestOrchestrator_RecordProfessionalResponse_FirstAcceptWins(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	publisher := mockSvc.NewMockEventPublisher(t)
	publisher.EXPECT().
		PublishAttributionEvent(mock.Anything, mock.MatchedBy(func(event *service.AttributionEvent) bool {
			return event.Status == string(entity.AttributionStatusAccepted) &&
				event.ProfessionalID == candidates.near.ID.String() &&
				event.AttributionID == started.AttributionID.String()
		})).
		Return(nil).
		Once()
	engine.orchestrator.publisher = publisher

	won, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.near.ID, true)
	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeAccepted, won.Outcome)
	assert.Equal(t, entity.AttributionStatusAccepted, won.Status)
	assert.Equal(t, 3, won.RemindersCreated)
	assert.Empty(t, won.Warning)

	lost, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.far.ID, true)
	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeSuperseded, lost.Outcome)
	assert.Equal(t, entity.AttributionStatusAccepted, lost.Status)

	attribution, err := engine.store.Attributions().FindByID(ctx, started.AttributionID)
	require.NoError(t, err)
	require.NotNil(t, attribution.AcceptedProfessionalID)
	assert.Equal(t, candidates.near.ID, *attribution.AcceptedProfessionalID)

	responses, err := engine.store.Responses().FindByAttribution(ctx, started.AttributionID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	for _, response := range responses {
		assert.True(t, response.Accepted())
	}

	reminders, err := engine.store.Reminders().FindByBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 3)
	for _, reminder := range reminders {
		require.NotNil(t, reminder.ProfessionalID)
		assert.Equal(t, candidates.near.ID, *reminder.ProfessionalID)
	}

	assigned := 0
	for _, msg := range engine.sender.messages(entity.ChannelEmail) {
		if msg.To == customerEmail && msg.TemplateID == "customer_professional_assigned" {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestOrchestrator_RecordProfessionalResponse_RepeatedAccept(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	_, err = engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.near.ID, true)
	require.NoError(t, err)

	again, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.near.ID, true)

	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeAccepted, again.Outcome)
	assert.Zero(t, again.RemindersCreated)
	assert.Equal(t, 1, engine.sender.countTo(entity.ChannelSMS, "+33612345678"))
}

func TestOrchestrator_RecordProfessionalResponse_Decline(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	result, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.far.ID, false)

	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeDeclined, result.Outcome)
	assert.Equal(t, entity.AttributionStatusBroadcasting, result.Status)

	row, err := engine.store.Eligibility().Find(ctx, started.AttributionID, candidates.far.ID)
	require.NoError(t, err)
	assert.True(t, row.Responded)
}

func TestOrchestrator_RecordProfessionalResponse_Unknown(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	_, err = engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.outside.ID, true)
	assert.ErrorIs(t, err, domainerrors.ErrEligibilityNotFound)

	_, err = engine.orchestrator.RecordProfessionalResponse(ctx, uuid.New(), candidates.near.ID, true)
	assert.ErrorIs(t, err, domainerrors.ErrAttributionNotFound)

	attribution, err := engine.store.Attributions().FindByID(ctx, started.AttributionID)
	require.NoError(t, err)
	assert.Equal(t, entity.AttributionStatusBroadcasting, attribution.Status)
}

func TestOrchestrator_BookingCancelled_StopsAttributionAndReminders(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)
	_, err = engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerPaymentCompleted, usecase.TriggerOptions{})
	require.NoError(t, err)

	booking.Status = entity.BookingStatusCancelled
	engine.store.SeedBooking(booking)

	report, err := engine.orchestrator.OnBookingTrigger(ctx, booking.ID, entity.TriggerBookingCancelled, usecase.TriggerOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{started.AttributionID}, report.CancelledAttributions)
	assert.Equal(t, int64(3), report.RemindersCancelled)
	assert.Zero(t, report.RemindersCreated)

	attribution, err := engine.store.Attributions().FindByID(ctx, started.AttributionID)
	require.NoError(t, err)
	assert.Equal(t, entity.AttributionStatusCancelled, attribution.Status)

	var cancellation []sentMessage
	for _, msg := range engine.sender.messages(entity.ChannelEmail) {
		if msg.To == customerEmail && msg.TemplateID == "customer_booking_cancelled" {
			cancellation = append(cancellation, msg)
		}
	}
	require.Len(t, cancellation, 1)
	require.Len(t, cancellation[0].Attachments, 1)
	assert.Equal(t, entity.DocumentTypeCancellationNotice, cancellation[0].Attachments[0].Type)

	late, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.near.ID, true)
	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeNoOp, late.Outcome)
	assert.Equal(t, entity.AttributionStatusCancelled, late.Status)
	assert.NotEmpty(t, late.Warning)

	_, err = engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestOrchestrator_CancelAttribution(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	publisher := mockSvc.NewMockEventPublisher(t)
	publisher.EXPECT().
		PublishAttributionEvent(mock.Anything, mock.Anything).
		Return(errors.New("topic not found")).
		Once()
	engine.orchestrator.publisher = publisher

	cancelled, err := engine.orchestrator.CancelAttribution(ctx, started.AttributionID)
	require.NoError(t, err)
	assert.Equal(t, entity.AttributionStatusCancelled, cancelled.Status)

	again, err := engine.orchestrator.CancelAttribution(ctx, started.AttributionID)
	assert.ErrorIs(t, err, domainerrors.ErrAttributionFinalized)
	assert.Equal(t, entity.AttributionStatusCancelled, again.Status)
}

func TestOrchestrator_ExpireStaleAttributions(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	booking := seedBooking(engine)
	candidates := seedCandidates(engine)

	started, err := engine.orchestrator.StartAttribution(ctx, startRequest(booking))
	require.NoError(t, err)

	expired, err := engine.orchestrator.ExpireStaleAttributions(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)

	publisher := mockSvc.NewMockEventPublisher(t)
	publisher.EXPECT().
		PublishAttributionEvent(mock.Anything, mock.MatchedBy(func(event *service.AttributionEvent) bool {
			return event.Status == string(entity.AttributionStatusExpired)
		})).
		Return(nil).
		Once()
	engine.orchestrator.publisher = publisher
	engine.orchestrator.now = func() time.Time { return time.Now().Add(49 * time.Hour) }

	expired, err = engine.orchestrator.ExpireStaleAttributions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	late, err := engine.orchestrator.RecordProfessionalResponse(ctx, started.AttributionID, candidates.near.ID, true)
	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseOutcomeNoOp, late.Outcome)
	assert.Equal(t, entity.AttributionStatusExpired, late.Status)
}

package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	"attribution/internal/domain/service"
	"attribution/internal/infra/persistence/memory"

	"github.com/google/uuid"
)

const testServiceType = "plumbing"

// Paris city hall, the service location of every test booking.
var serviceLocation = entity.Coordinates{Latitude: 48.8566, Longitude: 2.3522}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Attribution: config.DefaultAttributionConfig(),
		Notification: &config.NotificationConfig{
			SendTimeout:                    time.Second,
			FanOutWorkers:                  4,
			MaxProfessionalAttachmentBytes: 5 << 20,
			ProfessionalTemplate:           "professional-attribution",
		},
		Reminder: config.DefaultReminderConfig(),
	}
}

// northOf returns a point km kilometres due north of origin.
func northOf(origin entity.Coordinates, km float64) *entity.Coordinates {
	return &entity.Coordinates{Latitude: origin.Latitude + km/111.32, Longitude: origin.Longitude}
}

func newTestBooking() *entity.Booking {
	now := time.Now()
	location := serviceLocation

	return &entity.Booking{
		ID:          uuid.New(),
		Reference:   "BK-1001",
		Status:      entity.BookingStatusConfirmed,
		ServiceType: testServiceType,
		ScheduledAt: now.Add(10 * 24 * time.Hour),
		Location: entity.Location{
			Address:     "1 Place de l'Hotel de Ville",
			PostalCode:  "75004",
			City:        "Paris",
			Coordinates: &location,
		},
		TotalAmount: 12900,
		Currency:    "EUR",
		Customer: entity.Customer{
			ID:        uuid.New(),
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "Jane.Doe@example.com",
			Phone:     "+33 6 12 34 56 78",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestProfessional(name string, coordinates *entity.Coordinates) *entity.Professional {
	return &entity.Professional{
		ID:           uuid.New(),
		CompanyName:  name + " SARL",
		ContactName:  name,
		Email:        name + "@pros.example.com",
		Verified:     true,
		Available:    true,
		ServiceTypes: []string{testServiceType},
		Coordinates:  coordinates,
	}
}

func newTestStaff(email string, triggers ...entity.Trigger) *entity.StaffMember {
	return &entity.StaffMember{
		ID:         uuid.New(),
		Name:       email,
		Email:      email,
		Department: "operations",
		Active:     true,
		Triggers:   triggers,
	}
}

type sentMessage struct {
	Channel     entity.Channel
	To          string
	TemplateID  string
	Payload     map[string]any
	Attachments []entity.Document
}

// recordingSender accepts every message on every channel unless the recipient is listed in reject.
// onSend, when set, runs before the message is recorded.
type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	reject map[string]string
	onSend func(ctx context.Context, msg sentMessage)
}

func (s *recordingSender) record(ctx context.Context, msg sentMessage) *service.DeliveryReceipt {
	if s.onSend != nil {
		s.onSend(ctx, msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, msg)
	if reason, ok := s.reject[msg.To]; ok {
		return &service.DeliveryReceipt{Delivered: false, Reason: reason}
	}

	return &service.DeliveryReceipt{Delivered: true, ProviderRef: fmt.Sprintf("ref-%d", len(s.sent))}
}

func (s *recordingSender) SendEmail(ctx context.Context, to, templateID string, payload map[string]any, attachments []entity.Document) (*service.DeliveryReceipt, error) {
	return s.record(ctx, sentMessage{Channel: entity.ChannelEmail, To: to, TemplateID: templateID, Payload: payload, Attachments: attachments}), nil
}

func (s *recordingSender) SendSMS(ctx context.Context, to string, payload map[string]any) (*service.DeliveryReceipt, error) {
	return s.record(ctx, sentMessage{Channel: entity.ChannelSMS, To: to, Payload: payload}), nil
}

func (s *recordingSender) SendWhatsApp(ctx context.Context, to, templateID string, variables map[string]string) (*service.DeliveryReceipt, error) {
	payload := make(map[string]any, len(variables))
	for key, value := range variables {
		payload[key] = value
	}

	return s.record(ctx, sentMessage{Channel: entity.ChannelWhatsApp, To: to, TemplateID: templateID, Payload: payload}), nil
}

func (s *recordingSender) messages(channel entity.Channel) []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []sentMessage
	for _, msg := range s.sent {
		if msg.Channel == channel {
			matched = append(matched, msg)
		}
	}

	return matched
}

func (s *recordingSender) countTo(channel entity.Channel, to string) int {
	count := 0
	for _, msg := range s.messages(channel) {
		if msg.To == to {
			count++
		}
	}

	return count
}

// staticDocuments renders one small document of every type.
type staticDocuments struct {
	mu       sync.Mutex
	triggers []entity.Trigger
	err      error
}

func (g *staticDocuments) GenerateDocuments(_ context.Context, _ uuid.UUID, trigger entity.Trigger) ([]entity.Document, error) {
	g.mu.Lock()
	g.triggers = append(g.triggers, trigger)
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}

	types := []entity.DocumentType{
		entity.DocumentTypeInvoice,
		entity.DocumentTypeBookingConfirmation,
		entity.DocumentTypeServiceSummary,
		entity.DocumentTypeTermsAndConditions,
		entity.DocumentTypeCancellationNotice,
		entity.DocumentTypeMissionBrief,
	}
	docs := make([]entity.Document, 0, len(types))
	for _, docType := range types {
		docs = append(docs, entity.Document{
			Type:        docType,
			Filename:    string(docType) + ".pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.7 " + string(docType)),
		})
	}

	return docs, nil
}

func (g *staticDocuments) calls() []entity.Trigger {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]entity.Trigger(nil), g.triggers...)
}

// testEngine wires the real components over the in-memory store.
type testEngine struct {
	store        *memory.Store
	sender       *recordingSender
	documents    *staticDocuments
	orchestrator *orchestrator
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	logger := newTestLogger()
	cfg := newTestConfig()
	store := memory.NewStore()
	sender := &recordingSender{}
	documents := &staticDocuments{}

	deduplicator := NewNotificationDeduplicator(NotificationDeduplicatorParams{
		Logger:           logger,
		NotificationRepo: store.Notifications(),
	})
	dispatcher := NewChannelDispatcher(ChannelDispatcherParams{
		Logger:           logger,
		NotificationRepo: store.Notifications(),
		EmailSender:      sender,
		SMSSender:        sender,
		WhatsAppSender:   sender,
		Config:           cfg,
	})
	notifications := NewNotificationService(NotificationServiceParams{
		Logger:           logger,
		NotificationRepo: store.Notifications(),
		Deduplicator:     deduplicator,
		Dispatcher:       dispatcher,
		DocumentGen:      documents,
		Config:           cfg,
	})

	orch := NewOrchestrator(OrchestratorParams{
		Logger:           logger,
		Config:           cfg,
		BookingRepo:      store.Bookings(),
		ProfessionalRepo: store.Professionals(),
		Matcher: NewGeoMatcher(GeoMatcherParams{
			Logger:           logger,
			ProfessionalRepo: store.Professionals(),
			Config:           cfg,
		}),
		Ledger: NewEligibilityLedger(EligibilityLedgerParams{
			Logger:          logger,
			EligibilityRepo: store.Eligibility(),
			TxManager:       store.TransactionManager(),
		}),
		StateMachine: NewAttributionStateMachine(AttributionStateMachineParams{
			Logger:          logger,
			AttributionRepo: store.Attributions(),
			Config:          cfg,
		}),
		Resolver: NewRecipientResolver(RecipientResolverParams{
			Logger:    logger,
			StaffRepo: store.Staff(),
			Config:    cfg,
		}),
		Notifications: notifications,
		Reminders: NewReminderScheduler(ReminderSchedulerParams{
			Logger:       logger,
			ReminderRepo: store.Reminders(),
			Config:       cfg,
		}),
		DocumentGen: documents,
	})

	return &testEngine{
		store:        store,
		sender:       sender,
		documents:    documents,
		orchestrator: orch.(*orchestrator),
	}
}

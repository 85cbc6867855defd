// Package memory provides in-process repositories for development and tests.
// They enforce the same uniqueness keys as the postgres unique indexes.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"attribution/internal/domain/entity"
	"attribution/internal/domain/repository"

	"github.com/google/uuid"
)

type pairKey struct {
	attributionID  uuid.UUID
	professionalID uuid.UUID
}

type reminderKey struct {
	bookingID    uuid.UUID
	reminderType entity.ReminderType
	recipient    string
}

// Store holds every table behind one lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bookings      map[uuid.UUID]*entity.Booking
	professionals map[uuid.UUID]*entity.Professional
	staff         map[uuid.UUID]*entity.StaffMember

	attributions    map[uuid.UUID]*entity.Attribution
	activeByBooking map[uuid.UUID]uuid.UUID

	eligibility map[pairKey]*entity.Eligibility
	responses   map[pairKey]*entity.ProfessionalResponse

	notifications     map[uuid.UUID]*entity.Notification
	notificationByKey map[string]uuid.UUID

	reminders    map[uuid.UUID]*entity.ScheduledReminder
	reminderKeys map[reminderKey]uuid.UUID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bookings:          make(map[uuid.UUID]*entity.Booking),
		professionals:     make(map[uuid.UUID]*entity.Professional),
		staff:             make(map[uuid.UUID]*entity.StaffMember),
		attributions:      make(map[uuid.UUID]*entity.Attribution),
		activeByBooking:   make(map[uuid.UUID]uuid.UUID),
		eligibility:       make(map[pairKey]*entity.Eligibility),
		responses:         make(map[pairKey]*entity.ProfessionalResponse),
		notifications:     make(map[uuid.UUID]*entity.Notification),
		notificationByKey: make(map[string]uuid.UUID),
		reminders:         make(map[uuid.UUID]*entity.ScheduledReminder),
		reminderKeys:      make(map[reminderKey]uuid.UUID),
	}
}

// SeedBooking stores or replaces a booking.
func (s *Store) SeedBooking(booking *entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *booking
	if booking.Location.Coordinates != nil {
		coordinates := *booking.Location.Coordinates
		copied.Location.Coordinates = &coordinates
	}
	s.bookings[booking.ID] = &copied
}

// SeedProfessional stores or replaces a professional.
func (s *Store) SeedProfessional(professional *entity.Professional) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.professionals[professional.ID] = cloneProfessional(professional)
}

// SeedStaff stores or replaces a staff member.
func (s *Store) SeedStaff(member *entity.StaffMember) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *member
	copied.Triggers = slices.Clone(member.Triggers)
	s.staff[member.ID] = &copied
}

// Attributions returns the attribution repository view.
func (s *Store) Attributions() repository.AttributionRepository { return &attributionRepository{s: s} }

// Eligibility returns the eligibility repository view.
func (s *Store) Eligibility() repository.EligibilityRepository { return &eligibilityRepository{s: s} }

// Responses returns the response repository view.
func (s *Store) Responses() repository.ResponseRepository { return &responseRepository{s: s} }

// Notifications returns the notification repository view.
func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{s: s}
}

// Reminders returns the reminder repository view.
func (s *Store) Reminders() repository.ReminderRepository { return &reminderRepository{s: s} }

// Bookings returns the booking registry view.
func (s *Store) Bookings() repository.BookingRepository { return &bookingRepository{s: s} }

// Professionals returns the professional registry view.
func (s *Store) Professionals() repository.ProfessionalRepository {
	return &professionalRepository{s: s}
}

// Staff returns the staff directory view.
func (s *Store) Staff() repository.StaffRepository { return &staffRepository{s: s} }

// TransactionManager returns a manager that serializes transactions.
// Writes are not rolled back when fn fails.
func (s *Store) TransactionManager() repository.TransactionManager {
	return &transactionManager{s: s}
}

type transactionManager struct {
	s *Store
}

func (m *transactionManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	return fn(&repositoryFactory{s: m.s})
}

type repositoryFactory struct {
	s *Store
}

func (f *repositoryFactory) NewAttributionRepository() repository.AttributionRepository {
	return f.s.Attributions()
}

func (f *repositoryFactory) NewEligibilityRepository() repository.EligibilityRepository {
	return f.s.Eligibility()
}

func (f *repositoryFactory) NewResponseRepository() repository.ResponseRepository {
	return f.s.Responses()
}

func cloneProfessional(professional *entity.Professional) *entity.Professional {
	copied := *professional
	copied.ServiceTypes = slices.Clone(professional.ServiceTypes)
	if professional.Coordinates != nil {
		coordinates := *professional.Coordinates
		copied.Coordinates = &coordinates
	}

	return &copied
}

func cloneAttribution(attribution *entity.Attribution) *entity.Attribution {
	copied := *attribution
	if attribution.AcceptedProfessionalID != nil {
		professionalID := *attribution.AcceptedProfessionalID
		copied.AcceptedProfessionalID = &professionalID
	}
	if attribution.BroadcastDeadline != nil {
		deadline := *attribution.BroadcastDeadline
		copied.BroadcastDeadline = &deadline
	}

	return &copied
}

func cloneEligibility(row *entity.Eligibility) *entity.Eligibility {
	copied := *row
	if row.NotifiedAt != nil {
		notifiedAt := *row.NotifiedAt
		copied.NotifiedAt = &notifiedAt
	}
	if row.RespondedAt != nil {
		respondedAt := *row.RespondedAt
		copied.RespondedAt = &respondedAt
	}

	return &copied
}

func cloneNotification(notification *entity.Notification) *entity.Notification {
	copied := *notification
	copied.Payload = maps.Clone(notification.Payload)
	copied.Metadata.Attachments = slices.Clone(notification.Metadata.Attachments)
	if notification.SentAt != nil {
		sentAt := *notification.SentAt
		copied.SentAt = &sentAt
	}

	return &copied
}

func cloneReminder(reminder *entity.ScheduledReminder) *entity.ScheduledReminder {
	copied := *reminder
	if reminder.AttributionID != nil {
		attributionID := *reminder.AttributionID
		copied.AttributionID = &attributionID
	}
	if reminder.ProfessionalID != nil {
		professionalID := *reminder.ProfessionalID
		copied.ProfessionalID = &professionalID
	}

	return &copied
}

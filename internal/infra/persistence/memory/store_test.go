package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributionRepository_CreateActive_OneActivePerBooking(t *testing.T) {
	store := NewStore()
	repo := store.Attributions()
	ctx := context.Background()
	bookingID := uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = make(map[uuid.UUID]struct{})
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, isNew, err := repo.CreateActive(ctx, &entity.Attribution{
				ID:        uuid.New(),
				BookingID: bookingID,
				Status:    entity.AttributionStatusPending,
			})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			ids[stored.ID] = struct{}{}
			if isNew {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
}

func TestAttributionRepository_TerminalStatusFreesBooking(t *testing.T) {
	store := NewStore()
	repo := store.Attributions()
	ctx := context.Background()
	bookingID := uuid.New()

	first, _, err := repo.CreateActive(ctx, &entity.Attribution{ID: uuid.New(), BookingID: bookingID, Status: entity.AttributionStatusPending})
	require.NoError(t, err)

	changed, err := repo.CompareAndSetStatus(ctx, first.ID,
		[]entity.AttributionStatus{entity.AttributionStatusPending},
		entity.AttributionUpdate{To: entity.AttributionStatusCancelled, At: time.Now()},
	)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = repo.FindActiveByBooking(ctx, bookingID)
	assert.ErrorIs(t, err, domainerrors.ErrAttributionNotFound)

	second, created, err := repo.CreateActive(ctx, &entity.Attribution{ID: uuid.New(), BookingID: bookingID, Status: entity.AttributionStatusPending})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAttributionRepository_CompareAndSetStatus_RejectsWrongFrom(t *testing.T) {
	store := NewStore()
	repo := store.Attributions()
	ctx := context.Background()

	stored, _, err := repo.CreateActive(ctx, &entity.Attribution{ID: uuid.New(), BookingID: uuid.New(), Status: entity.AttributionStatusPending})
	require.NoError(t, err)

	changed, err := repo.CompareAndSetStatus(ctx, stored.ID,
		[]entity.AttributionStatus{entity.AttributionStatusBroadcasting},
		entity.AttributionUpdate{To: entity.AttributionStatusAccepted, At: time.Now()},
	)
	require.NoError(t, err)
	assert.False(t, changed)

	current, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AttributionStatusPending, current.Status)
}

func TestNotificationRepository_CreateIfAbsent_Concurrent(t *testing.T) {
	store := NewStore()
	repo := store.Notifications()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, err := repo.CreateIfAbsent(ctx, &entity.Notification{
				ID:       uuid.New(),
				DedupKey: "booking:b1|jane@example.com|EMAIL|payment_completed",
				Status:   entity.NotificationStatusPending,
			})
			assert.NoError(t, err)
			if isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestNotificationRepository_UpdateStatus_OnlyFromExpected(t *testing.T) {
	store := NewStore()
	repo := store.Notifications()
	ctx := context.Background()

	stored, _, err := repo.CreateIfAbsent(ctx, &entity.Notification{ID: uuid.New(), DedupKey: "k", Status: entity.NotificationStatusPending})
	require.NoError(t, err)

	update := repository.NotificationStatusUpdate{From: entity.NotificationStatusPending, To: entity.NotificationStatusSent, At: time.Now()}
	changed, err := repo.UpdateStatus(ctx, stored.ID, update)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(ctx, stored.ID, update)
	require.NoError(t, err)
	assert.False(t, changed)

	current, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationStatusSent, current.Status)
	assert.NotNil(t, current.SentAt)
}

func TestNotificationRepository_ClaimStalePending(t *testing.T) {
	store := NewStore()
	repo := store.Notifications()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)

	stored, _, err := repo.CreateIfAbsent(ctx, &entity.Notification{
		ID: uuid.New(), DedupKey: "k", Status: entity.NotificationStatusPending, UpdatedAt: old,
	})
	require.NoError(t, err)

	now := time.Now()
	claimed, err := repo.ClaimStalePending(ctx, stored.ID, now.Add(-time.Minute), now)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimStalePending(ctx, stored.ID, now.Add(-time.Minute), now)
	require.NoError(t, err)
	assert.False(t, claimed, "a claimed row is fresh again")
}

func TestEligibilityRepository_CreateIfAbsent_SkipsExistingPairs(t *testing.T) {
	store := NewStore()
	repo := store.Eligibility()
	ctx := context.Background()
	attributionID := uuid.New()
	near, far := uuid.New(), uuid.New()

	inserted, err := repo.CreateIfAbsent(ctx, []*entity.Eligibility{
		{ID: uuid.New(), AttributionID: attributionID, ProfessionalID: far, DistanceKm: 140, IsEligible: true},
		{ID: uuid.New(), AttributionID: attributionID, ProfessionalID: near, DistanceKm: 12, IsEligible: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = repo.CreateIfAbsent(ctx, []*entity.Eligibility{
		{ID: uuid.New(), AttributionID: attributionID, ProfessionalID: near, DistanceKm: 12, IsEligible: true},
	})
	require.NoError(t, err)
	assert.Zero(t, inserted)

	rows, err := repo.FindByAttribution(ctx, attributionID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, near, rows[0].ProfessionalID)
	assert.Equal(t, far, rows[1].ProfessionalID)

	found, err := repo.MarkNotified(ctx, attributionID, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReminderRepository_UniquePerRecipient(t *testing.T) {
	store := NewStore()
	repo := store.Reminders()
	ctx := context.Background()
	bookingID := uuid.New()
	professionalID := uuid.New()
	attributionID := uuid.New()
	at := time.Now().Add(48 * time.Hour)

	_, created, err := repo.CreateIfAbsent(ctx, &entity.ScheduledReminder{ID: uuid.New(), BookingID: bookingID, Type: "24H", ScheduledAt: at, Status: entity.ReminderStatusPending})
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = repo.CreateIfAbsent(ctx, &entity.ScheduledReminder{ID: uuid.New(), BookingID: bookingID, Type: "24H", ScheduledAt: at, Status: entity.ReminderStatusPending})
	require.NoError(t, err)
	assert.False(t, created)

	_, created, err = repo.CreateIfAbsent(ctx, &entity.ScheduledReminder{
		ID: uuid.New(), BookingID: bookingID, AttributionID: &attributionID, ProfessionalID: &professionalID,
		Type: "24H", ScheduledAt: at, Status: entity.ReminderStatusPending,
	})
	require.NoError(t, err)
	assert.True(t, created, "the professional variant is a distinct reminder")

	cancelled, err := repo.CancelPendingByBooking(ctx, bookingID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)
}

package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"

	"github.com/google/uuid"
)

type attributionRepository struct {
	s *Store
}

func (r *attributionRepository) CreateActive(_ context.Context, attribution *entity.Attribution) (*entity.Attribution, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if activeID, ok := r.s.activeByBooking[attribution.BookingID]; ok {
		return cloneAttribution(r.s.attributions[activeID]), false, nil
	}

	stored := cloneAttribution(attribution)
	r.s.attributions[stored.ID] = stored
	if !stored.Status.IsTerminal() {
		r.s.activeByBooking[stored.BookingID] = stored.ID
	}

	return cloneAttribution(stored), true, nil
}

func (r *attributionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Attribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	attribution, ok := r.s.attributions[id]
	if !ok {
		return nil, domainerrors.ErrAttributionNotFound
	}

	return cloneAttribution(attribution), nil
}

func (r *attributionRepository) FindActiveByBooking(_ context.Context, bookingID uuid.UUID) (*entity.Attribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	activeID, ok := r.s.activeByBooking[bookingID]
	if !ok {
		return nil, domainerrors.ErrAttributionNotFound
	}

	return cloneAttribution(r.s.attributions[activeID]), nil
}

func (r *attributionRepository) CompareAndSetStatus(_ context.Context, id uuid.UUID, from []entity.AttributionStatus, update entity.AttributionUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	attribution, ok := r.s.attributions[id]
	if !ok {
		return false, domainerrors.ErrAttributionNotFound
	}
	if !slices.Contains(from, attribution.Status) {
		return false, nil
	}

	attribution.Status = update.To
	attribution.UpdatedAt = update.At
	if update.AcceptedProfessionalID != nil {
		professionalID := *update.AcceptedProfessionalID
		attribution.AcceptedProfessionalID = &professionalID
	}
	if update.BroadcastDeadline != nil {
		deadline := *update.BroadcastDeadline
		attribution.BroadcastDeadline = &deadline
	}
	if update.To.IsTerminal() && r.s.activeByBooking[attribution.BookingID] == id {
		delete(r.s.activeByBooking, attribution.BookingID)
	}

	return true, nil
}

func (r *attributionRepository) FindStaleBroadcasts(_ context.Context, now time.Time, limit int) ([]*entity.Attribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stale []*entity.Attribution
	for _, attribution := range r.s.attributions {
		if attribution.IsExpiredAt(now) {
			stale = append(stale, cloneAttribution(attribution))
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].BroadcastDeadline.Before(*stale[j].BroadcastDeadline)
	})
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}

	return stale, nil
}

package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"

	"github.com/google/uuid"
)

type eligibilityRepository struct {
	s *Store
}

func (r *eligibilityRepository) CreateIfAbsent(_ context.Context, rows []*entity.Eligibility) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inserted := 0
	for _, row := range rows {
		key := pairKey{attributionID: row.AttributionID, professionalID: row.ProfessionalID}
		if _, exists := r.s.eligibility[key]; exists {
			continue
		}
		r.s.eligibility[key] = cloneEligibility(row)
		inserted++
	}

	return inserted, nil
}

func (r *eligibilityRepository) FindByAttribution(_ context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []*entity.Eligibility
	for key, row := range r.s.eligibility {
		if key.attributionID == attributionID {
			rows = append(rows, cloneEligibility(row))
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DistanceKm != rows[j].DistanceKm {
			return rows[i].DistanceKm < rows[j].DistanceKm
		}

		return bytes.Compare(rows[i].ProfessionalID[:], rows[j].ProfessionalID[:]) < 0
	})

	return rows, nil
}

func (r *eligibilityRepository) Find(_ context.Context, attributionID, professionalID uuid.UUID) (*entity.Eligibility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.eligibility[pairKey{attributionID: attributionID, professionalID: professionalID}]
	if !ok {
		return nil, domainerrors.ErrEligibilityNotFound
	}

	return cloneEligibility(row), nil
}

func (r *eligibilityRepository) MarkNotified(_ context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.eligibility[pairKey{attributionID: attributionID, professionalID: professionalID}]
	if !ok {
		return false, nil
	}
	if !row.Notified {
		row.Notified = true
		row.NotifiedAt = &at
	}
	row.UpdatedAt = at

	return true, nil
}

func (r *eligibilityRepository) MarkResponded(_ context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.eligibility[pairKey{attributionID: attributionID, professionalID: professionalID}]
	if !ok {
		return false, nil
	}
	row.Responded = true
	row.RespondedAt = &at
	row.UpdatedAt = at

	return true, nil
}

type responseRepository struct {
	s *Store
}

func (r *responseRepository) Upsert(_ context.Context, response *entity.ProfessionalResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{attributionID: response.AttributionID, professionalID: response.ProfessionalID}
	copied := *response
	if existing, ok := r.s.responses[key]; ok {
		copied.ID = existing.ID
		copied.CreatedAt = existing.CreatedAt
	}
	r.s.responses[key] = &copied

	return nil
}

func (r *responseRepository) FindByAttribution(_ context.Context, attributionID uuid.UUID) ([]*entity.ProfessionalResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var responses []*entity.ProfessionalResponse
	for key, response := range r.s.responses {
		if key.attributionID == attributionID {
			copied := *response
			responses = append(responses, &copied)
		}
	}

	sort.Slice(responses, func(i, j int) bool {
		return responses[i].RespondedAt.Before(responses[j].RespondedAt)
	})

	return responses, nil
}

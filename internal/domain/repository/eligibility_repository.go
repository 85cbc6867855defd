package repository

import (
	"context"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// EligibilityRepository defines the persistence operations for eligibility rows.
type EligibilityRepository interface {
	// CreateIfAbsent inserts the rows, silently skipping any (attribution, professional)
	// pair that already exists. It returns the number of rows inserted.
	CreateIfAbsent(ctx context.Context, rows []*entity.Eligibility) (int, error)

	// FindByAttribution lists rows ordered by distance then professional ID.
	FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error)

	// Find retrieves the row of one pair.
	Find(ctx context.Context, attributionID, professionalID uuid.UUID) (*entity.Eligibility, error)

	// MarkNotified sets notified=true. It reports whether the pair exists.
	MarkNotified(ctx context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error)

	// MarkResponded sets responded=true. It reports whether the pair exists.
	MarkResponded(ctx context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error)
}

// ResponseRepository defines the persistence operations for professional responses.
type ResponseRepository interface {
	// Upsert stores the response of a pair, replacing an earlier decision of the same professional.
	Upsert(ctx context.Context, response *entity.ProfessionalResponse) error

	// FindByAttribution lists the responses ordered by response time.
	FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.ProfessionalResponse, error)
}
